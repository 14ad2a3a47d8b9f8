// Package logging defines the common logging infrastructure used by the other
// packages in this library.  Everything is built on go-kit's logging API, and
// loggers are always injected rather than obtained from a global.
package logging
