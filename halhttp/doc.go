// Package halhttp connects hal resource trees to the HTTP request/response
// lifecycle.  A decorator creates one root resource per request, scoped to
// the request's route variables, and handlers retrieve it from the request
// context to attach links and embeds before responding.
package halhttp
