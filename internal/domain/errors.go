package domain

import "errors"

// Decode failures. Decoders wrap these with context via fmt.Errorf("%w").
var (
	// ErrParse marks malformed XML, JSON, base64 or coded text.
	ErrParse = errors.New("parse error")
	// ErrMissingField marks input that parsed but lacks a required element.
	ErrMissingField = errors.New("missing required field")
	// ErrUnrecognizedFormat marks a known family whose variant could not be resolved.
	ErrUnrecognizedFormat = errors.New("unrecognized format")
	// ErrSerialization marks a record whose shape the storage layer cannot accept.
	ErrSerialization = errors.New("serialization error")
)

// Skip outcomes. These are not failures; the message is acknowledged and dropped.
var (
	ErrNoRoute       = errors.New("no route for destination")
	ErrBinaryPayload = errors.New("binary payload")
)

// IsSkip reports whether err means the message was intentionally dropped.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNoRoute) || errors.Is(err, ErrBinaryPayload)
}
