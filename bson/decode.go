package bson

import (
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"time"
	"unicode/utf8"
)

// undefinedValue marks a decoded undefined element, which is dropped from
// its parent.
type undefinedValue struct{}

// Decode decodes the document at the start of b. Bytes past the declared
// length are ignored. On error no document is returned.
func (c *Codec) Decode(b []byte) (*Document, error) {
	size, err := c.peekSize(b)
	if err != nil {
		return nil, err
	}
	if size > len(b) {
		return nil, decodef("declared length %d exceeds the %d byte buffer", size, len(b))
	}
	return readDocument(b[:size], 0)
}

func (c *Codec) peekSize(b []byte) (int, error) {
	if len(b) < 4 {
		return 0, decodef("buffer of %d bytes is too short for a length prefix", len(b))
	}
	size := int(int32(binary.LittleEndian.Uint32(b)))
	if size < minDocumentSize {
		return 0, decodef("invalid document length %d", size)
	}
	if c.MaxDocumentSize > 0 && size > c.MaxDocumentSize {
		return 0, decodef("document length %d exceeds the %d byte maximum", size, c.MaxDocumentSize)
	}
	return size, nil
}

// readDocument decodes b, which must span exactly one document from its
// length prefix through its terminator.
func readDocument(b []byte, depth int) (*Document, error) {
	doc := NewDocument()
	err := readElems(b, depth, func(key string, value interface{}) error {
		if _, ok := value.(undefinedValue); !ok {
			doc.Set(key, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func readArray(b []byte, depth int) (Array, error) {
	arr := Array{}
	i := 0
	err := readElems(b, depth, func(key string, value interface{}) error {
		if expected := strconv.Itoa(i); key != expected {
			return decodef("array key %q out of sequence, expected %q", key, expected)
		}
		i++
		if _, ok := value.(undefinedValue); !ok {
			arr = append(arr, value)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return arr, nil
}

func readElems(b []byte, depth int, put func(key string, value interface{}) error) error {
	if depth > MaxNestingDepth {
		return decodef("nesting exceeds %d levels", MaxNestingDepth)
	}
	if len(b) < minDocumentSize {
		return decodef("document of %d bytes is too short", len(b))
	}
	if int(int32(binary.LittleEndian.Uint32(b))) != len(b) {
		return decodef("declared length %d does not match the %d byte body", int32(binary.LittleEndian.Uint32(b)), len(b))
	}
	if b[len(b)-1] != 0x00 {
		return decodef("document is not terminated by a null byte")
	}

	c := &cursor{b: b[4 : len(b)-1]}
	for c.remaining() > 0 {
		tag, err := c.readByte()
		if err != nil {
			return err
		}
		if tag == 0x00 {
			return decodef("terminator found %d bytes before the declared end", c.remaining()+1)
		}
		key, err := c.readCString()
		if err != nil {
			return err
		}
		value, err := readValue(Type(tag), c, depth)
		if err != nil {
			return wrapField(err, key)
		}
		if err := put(key, value); err != nil {
			return err
		}
	}
	return nil
}

func readValue(t Type, c *cursor, depth int) (interface{}, error) {
	switch t {
	case TypeDouble:
		u, err := c.readUint64()
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(u), nil
	case TypeString:
		return c.readString()
	case TypeDocument:
		b, err := c.readDocumentBytes()
		if err != nil {
			return nil, err
		}
		return readDocument(b, depth+1)
	case TypeArray:
		b, err := c.readDocumentBytes()
		if err != nil {
			return nil, err
		}
		return readArray(b, depth+1)
	case TypeBinary:
		return c.readBinary()
	case TypeUndefined:
		return undefinedValue{}, nil
	case TypeObjectID:
		return c.readObjectID()
	case TypeBoolean:
		b, err := c.readByte()
		if err != nil {
			return nil, err
		}
		switch b {
		case 0x00:
			return false, nil
		case 0x01:
			return true, nil
		default:
			return nil, decodef("invalid boolean value 0x%02x", b)
		}
	case TypeDateTime:
		ms, err := c.readInt64()
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(ms).UTC(), nil
	case TypeNull:
		return nil, nil
	case TypeRegex:
		pattern, err := c.readCString()
		if err != nil {
			return nil, err
		}
		flags, err := c.readCString()
		if err != nil {
			return nil, err
		}
		opts, ok := ParseRegexOptions(flags)
		if !ok {
			return nil, decodef("invalid regex flags %q", flags)
		}
		return Regex{Pattern: pattern, Options: opts}, nil
	case TypeDBPointer:
		ns, err := c.readString()
		if err != nil {
			return nil, err
		}
		id, err := c.readObjectID()
		if err != nil {
			return nil, err
		}
		return DBPointer{Namespace: ns, ID: id}, nil
	case TypeCode:
		s, err := c.readString()
		if err != nil {
			return nil, err
		}
		return Code(s), nil
	case TypeSymbol:
		s, err := c.readString()
		if err != nil {
			return nil, err
		}
		return Symbol(s), nil
	case TypeCodeWithScope:
		return c.readCodeWithScope(depth)
	case TypeInt32:
		i, err := c.readInt32()
		if err != nil {
			return nil, err
		}
		return i, nil
	case TypeTimestamp:
		inc, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		secs, err := c.readUint32()
		if err != nil {
			return nil, err
		}
		return Timestamp{Increment: inc, Seconds: secs}, nil
	case TypeInt64:
		return c.readInt64()
	case TypeMinKey:
		return MinKey{}, nil
	case TypeMaxKey:
		return MaxKey{}, nil
	default:
		return nil, decodef("unknown type tag 0x%02x", byte(t))
	}
}

// cursor reads from a bounded byte slice. Every read is bounds checked.
type cursor struct {
	b   []byte
	pos int
}

func (c *cursor) remaining() int {
	return len(c.b) - c.pos
}

func (c *cursor) next(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, decodef("need %d bytes at offset %d, have %d", n, c.pos, c.remaining())
	}
	out := c.b[c.pos : c.pos+n]
	c.pos += n
	return out, nil
}

func (c *cursor) readByte() (byte, error) {
	b, err := c.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readUint32() (uint32, error) {
	b, err := c.next(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) readInt32() (int32, error) {
	u, err := c.readUint32()
	return int32(u), err
}

func (c *cursor) readUint64() (uint64, error) {
	b, err := c.next(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *cursor) readInt64() (int64, error) {
	u, err := c.readUint64()
	return int64(u), err
}

func (c *cursor) readCString() (string, error) {
	i := bytes.IndexByte(c.b[c.pos:], 0x00)
	if i < 0 {
		return "", decodef("unterminated cstring at offset %d", c.pos)
	}
	b, _ := c.next(i + 1)
	if !utf8.Valid(b[:i]) {
		return "", decodef("cstring at offset %d is not valid UTF-8", c.pos-i-1)
	}
	return string(b[:i]), nil
}

func (c *cursor) readString() (string, error) {
	l, err := c.readInt32()
	if err != nil {
		return "", err
	}
	if l < 1 {
		return "", decodef("invalid string length %d", l)
	}
	b, err := c.next(int(l))
	if err != nil {
		return "", err
	}
	if b[l-1] != 0x00 {
		return "", decodef("string is not terminated by a null byte")
	}
	if !utf8.Valid(b[:l-1]) {
		return "", decodef("string is not valid UTF-8")
	}
	return string(b[:l-1]), nil
}

// readDocumentBytes returns an embedded document including its own length
// prefix.
func (c *cursor) readDocumentBytes() ([]byte, error) {
	if c.remaining() < 4 {
		return nil, decodef("need a length prefix at offset %d, have %d bytes", c.pos, c.remaining())
	}
	l := int(int32(binary.LittleEndian.Uint32(c.b[c.pos:])))
	if l < minDocumentSize {
		return nil, decodef("invalid embedded document length %d", l)
	}
	return c.next(l)
}

func (c *cursor) readObjectID() (ObjectID, error) {
	var id ObjectID
	b, err := c.next(len(id))
	if err != nil {
		return id, err
	}
	copy(id[:], b)
	return id, nil
}

func (c *cursor) readBinary() (Binary, error) {
	l, err := c.readInt32()
	if err != nil {
		return Binary{}, err
	}
	if l < 0 {
		return Binary{}, decodef("invalid binary length %d", l)
	}
	subtype, err := c.readByte()
	if err != nil {
		return Binary{}, err
	}
	b, err := c.next(int(l))
	if err != nil {
		return Binary{}, err
	}
	if subtype == BinaryOld {
		if len(b) < 4 {
			return Binary{}, decodef("old binary payload of %d bytes has no inner length", len(b))
		}
		inner := int(int32(binary.LittleEndian.Uint32(b)))
		if inner != len(b)-4 {
			return Binary{}, decodef("old binary inner length %d does not match %d", inner, len(b)-4)
		}
		b = b[4:]
	}
	data := make([]byte, len(b))
	copy(data, b)
	return Binary{Subtype: subtype, Data: data}, nil
}

func (c *cursor) readCodeWithScope(depth int) (CodeWithScope, error) {
	total, err := c.readInt32()
	if err != nil {
		return CodeWithScope{}, err
	}
	// length prefix, an empty string and an empty document
	if total < 4+5+5 {
		return CodeWithScope{}, decodef("invalid code with scope length %d", total)
	}
	body, err := c.next(int(total) - 4)
	if err != nil {
		return CodeWithScope{}, err
	}
	sub := &cursor{b: body}
	code, err := sub.readString()
	if err != nil {
		return CodeWithScope{}, err
	}
	docBytes, err := sub.readDocumentBytes()
	if err != nil {
		return CodeWithScope{}, err
	}
	if sub.remaining() != 0 {
		return CodeWithScope{}, decodef("code with scope length %d disagrees with its contents", total)
	}
	scope, err := readDocument(docBytes, depth+1)
	if err != nil {
		return CodeWithScope{}, err
	}
	return CodeWithScope{Code: Code(code), Scope: scope}, nil
}
