package bson

import (
	"encoding/binary"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type encoder struct {
	buf          []byte
	validateKeys bool
	maxSize      int
}

func newEncoder(c *Codec) *encoder {
	return &encoder{
		validateKeys: c.ValidateKeys,
		maxSize:      c.MaxDocumentSize,
	}
}

// Encode encodes doc, which must be a *Document, Document or D. The input is
// never modified. On error no bytes are returned.
func (c *Codec) Encode(doc interface{}) ([]byte, error) {
	elems, ok := documentElems(doc)
	if !ok {
		return nil, invalidDocumentf("cannot serialize %T as a document", doc)
	}
	e := newEncoder(c)
	if err := e.writeTopLevel(elems, c.MoveIDFirst); err != nil {
		return nil, err
	}
	return e.buf, nil
}

// documentElems returns the elements of a document-like value without
// copying them. Callers must not modify the result.
func documentElems(v interface{}) ([]Elem, bool) {
	switch d := v.(type) {
	case *Document:
		if d == nil {
			return nil, true
		}
		return d.elems, true
	case Document:
		return d.elems, true
	case D:
		return d, true
	default:
		return nil, false
	}
}

// writeTopLevel writes the top-level document. The _id field is written at
// most once: first when moveID is set, otherwise at its first position.
func (e *encoder) writeTopLevel(elems []Elem, moveID bool) error {
	idPos := -1
	for i, el := range elems {
		if el.Key != IDKey {
			continue
		}
		if idPos < 0 {
			idPos = i
			continue
		}
		if !Equal(elems[idPos].Value, el.Value) {
			return invalidDocumentf("duplicate %s field with conflicting values", IDKey)
		}
	}

	start := e.beginDocument()
	if moveID && idPos >= 0 {
		if err := e.writeElem(elems[idPos].Key, elems[idPos].Value, 0); err != nil {
			return wrapField(err, IDKey)
		}
	}
	for i, el := range elems {
		if el.Key == IDKey && (moveID || i != idPos) {
			continue
		}
		if err := e.writeElem(el.Key, el.Value, 0); err != nil {
			return wrapField(err, el.Key)
		}
		if err := e.checkSize(); err != nil {
			return err
		}
	}
	return e.endDocument(start)
}

func (e *encoder) writeDocument(elems []Elem, depth int) error {
	if depth > MaxNestingDepth {
		return invalidDocumentf("nesting exceeds %d levels", MaxNestingDepth)
	}
	start := e.beginDocument()
	for _, el := range elems {
		if err := e.writeElem(el.Key, el.Value, depth); err != nil {
			return wrapField(err, el.Key)
		}
		if err := e.checkSize(); err != nil {
			return err
		}
	}
	return e.endDocument(start)
}

func (e *encoder) writeArray(items []interface{}, depth int) error {
	if depth > MaxNestingDepth {
		return invalidDocumentf("nesting exceeds %d levels", MaxNestingDepth)
	}
	start := e.beginDocument()
	for i, item := range items {
		key := strconv.Itoa(i)
		if err := e.writeTaggedValue(key, item, depth); err != nil {
			return wrapField(err, key)
		}
		if err := e.checkSize(); err != nil {
			return err
		}
	}
	return e.endDocument(start)
}

func (e *encoder) beginDocument() int {
	start := len(e.buf)
	e.buf = append(e.buf, 0, 0, 0, 0)
	return start
}

func (e *encoder) endDocument(start int) error {
	e.buf = append(e.buf, 0x00)
	size := len(e.buf) - start
	if size > math.MaxInt32 {
		return invalidDocumentf("document of %d bytes exceeds the length prefix range", size)
	}
	binary.LittleEndian.PutUint32(e.buf[start:], uint32(size))
	return e.checkSize()
}

func (e *encoder) checkSize() error {
	if e.maxSize > 0 && len(e.buf) > e.maxSize {
		return invalidDocumentf("document is larger than the %d byte maximum", e.maxSize)
	}
	return nil
}

func (e *encoder) writeElem(key string, value interface{}, depth int) error {
	if err := e.checkKey(key); err != nil {
		return err
	}
	return e.writeTaggedValue(key, value, depth)
}

func (e *encoder) checkKey(key string) error {
	if strings.IndexByte(key, 0x00) >= 0 {
		return invalidDocumentf("key %q contains a null byte", key)
	}
	if !utf8.ValidString(key) {
		return invalidDocumentf("key %q is not valid UTF-8", key)
	}
	if !e.validateKeys {
		return nil
	}
	if strings.HasPrefix(key, "$") {
		return invalidDocumentf("key %q must not start with '$'", key)
	}
	if strings.Contains(key, ".") {
		return invalidDocumentf("key %q must not contain '.'", key)
	}
	return nil
}

// writeTaggedValue writes the type tag, key and payload. The tag is patched
// once the payload has determined the type.
func (e *encoder) writeTaggedValue(key string, value interface{}, depth int) error {
	tagPos := len(e.buf)
	e.buf = append(e.buf, 0x00)
	e.buf = appendCString(e.buf, key)
	t, err := e.writeValue(value, depth)
	if err != nil {
		return err
	}
	e.buf[tagPos] = byte(t)
	return nil
}

func (e *encoder) writeValue(value interface{}, depth int) (Type, error) {
	switch v := value.(type) {
	case nil:
		return TypeNull, nil
	case bool:
		if v {
			e.buf = append(e.buf, 0x01)
		} else {
			e.buf = append(e.buf, 0x00)
		}
		return TypeBoolean, nil
	case int32:
		e.buf = appendInt32(e.buf, v)
		return TypeInt32, nil
	case int64:
		e.buf = appendInt64(e.buf, v)
		return TypeInt64, nil
	case int:
		return e.writeInt(int64(v)), nil
	case int8:
		return e.writeInt(int64(v)), nil
	case int16:
		return e.writeInt(int64(v)), nil
	case uint8:
		return e.writeInt(int64(v)), nil
	case uint16:
		return e.writeInt(int64(v)), nil
	case uint32:
		return e.writeInt(int64(v)), nil
	case uint:
		return e.writeUint(uint64(v))
	case uint64:
		return e.writeUint(v)
	case *big.Int:
		if v == nil {
			return TypeNull, nil
		}
		if !v.IsInt64() {
			return 0, rangef("%s does not fit in a signed 64-bit integer", v.String())
		}
		return e.writeInt(v.Int64()), nil
	case float64:
		e.buf = appendUint64(e.buf, math.Float64bits(v))
		return TypeDouble, nil
	case float32:
		e.buf = appendUint64(e.buf, math.Float64bits(float64(v)))
		return TypeDouble, nil
	case string:
		if err := e.writeString(v); err != nil {
			return 0, err
		}
		return TypeString, nil
	case *Document:
		if v == nil {
			return TypeNull, nil
		}
		return TypeDocument, e.writeDocument(v.elems, depth+1)
	case Document:
		return TypeDocument, e.writeDocument(v.elems, depth+1)
	case D:
		return TypeDocument, e.writeDocument(v, depth+1)
	case Array:
		return TypeArray, e.writeArray(v, depth+1)
	case []interface{}:
		return TypeArray, e.writeArray(v, depth+1)
	case Binary:
		e.writeBinary(v.Subtype, v.Data)
		return TypeBinary, nil
	case []byte:
		e.writeBinary(BinaryGeneric, v)
		return TypeBinary, nil
	case ObjectID:
		e.buf = append(e.buf, v[:]...)
		return TypeObjectID, nil
	case time.Time:
		e.buf = appendInt64(e.buf, v.UnixMilli())
		return TypeDateTime, nil
	case DateTime:
		e.buf = appendInt64(e.buf, int64(v))
		return TypeDateTime, nil
	case Regex:
		if err := e.writeRegex(v.Pattern, v.Options.String()); err != nil {
			return 0, err
		}
		return TypeRegex, nil
	case *regexp.Regexp:
		if v == nil {
			return TypeNull, nil
		}
		if err := e.writeRegex(v.String(), ""); err != nil {
			return 0, err
		}
		return TypeRegex, nil
	case DBPointer:
		if err := e.writeString(v.Namespace); err != nil {
			return 0, err
		}
		e.buf = append(e.buf, v.ID[:]...)
		return TypeDBPointer, nil
	case Code:
		if err := e.writeString(string(v)); err != nil {
			return 0, err
		}
		return TypeCode, nil
	case Symbol:
		if err := e.writeString(string(v)); err != nil {
			return 0, err
		}
		return TypeSymbol, nil
	case CodeWithScope:
		if err := e.writeCodeWithScope(v, depth); err != nil {
			return 0, err
		}
		return TypeCodeWithScope, nil
	case Timestamp:
		e.buf = appendUint32(e.buf, v.Increment)
		e.buf = appendUint32(e.buf, v.Seconds)
		return TypeTimestamp, nil
	case MinKey:
		return TypeMinKey, nil
	case MaxKey:
		return TypeMaxKey, nil
	default:
		return 0, invalidDocumentf("cannot serialize value of type %T", value)
	}
}

func (e *encoder) writeInt(i int64) Type {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		e.buf = appendInt32(e.buf, int32(i))
		return TypeInt32
	}
	e.buf = appendInt64(e.buf, i)
	return TypeInt64
}

func (e *encoder) writeUint(u uint64) (Type, error) {
	if u > math.MaxInt64 {
		return 0, rangef("%d does not fit in a signed 64-bit integer", u)
	}
	return e.writeInt(int64(u)), nil
}

func (e *encoder) writeString(s string) error {
	if !utf8.ValidString(s) {
		return invalidStringf("value %q is not valid UTF-8", s)
	}
	e.buf = appendInt32(e.buf, int32(len(s)+1))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0x00)
	return nil
}

func (e *encoder) writeBinary(subtype byte, data []byte) {
	if subtype == BinaryOld {
		e.buf = appendInt32(e.buf, int32(len(data)+4))
		e.buf = append(e.buf, subtype)
		e.buf = appendInt32(e.buf, int32(len(data)))
	} else {
		e.buf = appendInt32(e.buf, int32(len(data)))
		e.buf = append(e.buf, subtype)
	}
	e.buf = append(e.buf, data...)
}

func (e *encoder) writeRegex(pattern string, flags string) error {
	if strings.IndexByte(pattern, 0x00) >= 0 {
		return invalidDocumentf("regex pattern %q contains a null byte", pattern)
	}
	if !utf8.ValidString(pattern) {
		return invalidStringf("regex pattern %q is not valid UTF-8", pattern)
	}
	e.buf = appendCString(e.buf, pattern)
	e.buf = appendCString(e.buf, flags)
	return nil
}

// writeCodeWithScope writes the scope without key validation; scope keys
// are variable names, not field names.
func (e *encoder) writeCodeWithScope(v CodeWithScope, depth int) error {
	start := len(e.buf)
	e.buf = append(e.buf, 0, 0, 0, 0)
	if err := e.writeString(string(v.Code)); err != nil {
		return err
	}
	validate := e.validateKeys
	e.validateKeys = false
	err := e.writeDocument(v.Scope.elemsOrNil(), depth+1)
	e.validateKeys = validate
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(e.buf[start:], uint32(len(e.buf)-start))
	return nil
}

func (d *Document) elemsOrNil() []Elem {
	if d == nil {
		return nil
	}
	return d.elems
}

func appendCString(b []byte, s string) []byte {
	b = append(b, s...)
	return append(b, 0x00)
}

func appendInt32(b []byte, i int32) []byte {
	return appendUint32(b, uint32(i))
}

func appendUint32(b []byte, u uint32) []byte {
	return append(b, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

func appendInt64(b []byte, i int64) []byte {
	return appendUint64(b, uint64(i))
}

func appendUint64(b []byte, u uint64) []byte {
	return append(b,
		byte(u), byte(u>>8), byte(u>>16), byte(u>>24),
		byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56),
	)
}
