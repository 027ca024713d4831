package bson

import (
	"io"
)

const (
	// DefaultMaxDocumentSize is the conventional server-side document size
	// ceiling. Codecs only enforce a ceiling when MaxDocumentSize is set.
	DefaultMaxDocumentSize = 16 * 1024 * 1024

	// MaxNestingDepth bounds how deeply documents and arrays may nest, in
	// both directions.
	MaxNestingDepth = 1024

	minDocumentSize = 5
)

// Codec holds encode and decode policy. The zero value encodes without key
// validation, keeps _id where it is and enforces no size ceiling. A Codec
// is never modified by its methods and may be shared between goroutines.
type Codec struct {
	// ValidateKeys rejects keys that start with '$' or contain '.'.
	ValidateKeys bool

	// MoveIDFirst writes a top-level _id field before all other fields.
	MoveIDFirst bool

	// MaxDocumentSize is the maximum encoded size of a top-level document in
	// bytes. Zero means no ceiling beyond what the length prefix can
	// express.
	MaxDocumentSize int
}

var defaultCodec = &Codec{}

// Encode encodes doc without key validation and without moving _id.
func Encode(doc interface{}) ([]byte, error) {
	return defaultCodec.Encode(doc)
}

// Serialize encodes doc. validateKeys rejects query operator style keys and
// moveIDFirst writes the _id field first.
func Serialize(doc interface{}, validateKeys bool, moveIDFirst bool) ([]byte, error) {
	c := &Codec{
		ValidateKeys: validateKeys,
		MoveIDFirst:  moveIDFirst,
	}
	return c.Encode(doc)
}

// Decode decodes a single document from b. Bytes after the document's
// declared length are ignored.
func Decode(b []byte) (*Document, error) {
	return defaultCodec.Decode(b)
}

// ReadDocument reads one length-prefixed document from r.
func ReadDocument(r io.Reader) (*Document, error) {
	return defaultCodec.ReadDocument(r)
}

// WriteDocument encodes doc and writes it to w.
func WriteDocument(w io.Writer, doc interface{}) error {
	return defaultCodec.WriteDocument(w, doc)
}

// MarshalValue encodes the payload of a single value and reports its type.
func MarshalValue(v interface{}) (Type, []byte, error) {
	e := newEncoder(defaultCodec)
	t, err := e.writeValue(v, 0)
	if err != nil {
		return 0, nil, err
	}
	return t, e.buf, nil
}

// UnmarshalValue decodes a single value payload of type t. The payload must
// be consumed exactly.
func UnmarshalValue(t Type, payload []byte) (interface{}, error) {
	c := &cursor{b: payload}
	v, err := readValue(t, c, 0)
	if err != nil {
		return nil, err
	}
	if _, ok := v.(undefinedValue); ok {
		return nil, decodef("undefined has no value representation")
	}
	if c.remaining() != 0 {
		return nil, decodef("%d trailing bytes after %s value", c.remaining(), t)
	}
	return v, nil
}
