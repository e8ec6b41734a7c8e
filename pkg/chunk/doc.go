// Package chunk adapts the two serial resources of the compression pipeline
// to turn-gated access: Source hands out fixed-size chunks of the input and
// Sink accumulates compressed units into the output encoder.
//
// Neither type is safe for concurrent use on its own. They are meant to be
// the protected resource of a turn.Gate, which serializes every call.
package chunk
