// Package hal builds HAL+JSON response bodies: trees of hyperlinked and
// embedded resources whose links are resolved by relation name against a
// per-server relation table.  Each outgoing response owns exactly one
// resource tree, created when the response begins and discarded once the
// body is written.  See https://stateless.group/hal_specification.html
// for the wire format.
package hal
