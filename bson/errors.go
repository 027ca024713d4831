package bson

import (
	"fmt"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidDocument is returned when a document cannot be represented
	// in BSON: bad keys, unsupported value types, a conflicting _id field or
	// a document above the configured size ceiling.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrRange is returned when an integer does not fit in a signed 64-bit
	// integer.
	ErrRange = errors.New("integer out of range")

	// ErrInvalidStringEncoding is returned when a string value is not valid
	// UTF-8.
	ErrInvalidStringEncoding = errors.New("invalid string encoding")

	// ErrDecode is returned for malformed input: truncated buffers, length
	// prefixes that disagree with their bodies or unknown type tags.
	ErrDecode = errors.New("malformed bson")
)

func invalidDocumentf(format string, args ...interface{}) error {
	return errors.Wrap(ErrInvalidDocument, fmt.Sprintf(format, args...))
}

func rangef(format string, args ...interface{}) error {
	return errors.Wrap(ErrRange, fmt.Sprintf(format, args...))
}

func invalidStringf(format string, args ...interface{}) error {
	return errors.Wrap(ErrInvalidStringEncoding, fmt.Sprintf(format, args...))
}

func decodef(format string, args ...interface{}) error {
	return errors.Wrap(ErrDecode, fmt.Sprintf(format, args...))
}

// wrapField prefixes err with the key it occurred under so that errors in
// nested documents read as a path.
func wrapField(err error, key string) error {
	return errors.Wrapf(err, "field %q", key)
}
