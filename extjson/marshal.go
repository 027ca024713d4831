package extjson

import (
	"bsonkit/bson"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Marshal renders doc as canonical Extended JSON v2. Field order is kept.
func Marshal(doc *bson.Document) ([]byte, error) {
	m := new(marshaler)
	if err := m.writeDocument(doc, 0); err != nil {
		return nil, err
	}
	return m.buf.Bytes(), nil
}

// MarshalValue renders a single value. Values that are not in their decoded
// form, such as native ints or bson.D, are normalized through the binary
// codec first.
func MarshalValue(v interface{}) ([]byte, error) {
	m := new(marshaler)
	if err := m.writeValue(v, 0); err != nil {
		return nil, err
	}
	return m.buf.Bytes(), nil
}

type marshaler struct {
	buf bytes.Buffer
}

func (m *marshaler) writeDocument(doc *bson.Document, depth int) error {
	if depth > bson.MaxNestingDepth {
		return errors.Wrapf(bson.ErrInvalidDocument, "nesting exceeds %d levels", bson.MaxNestingDepth)
	}
	m.buf.WriteByte('{')
	for i, e := range doc.Elems() {
		if i > 0 {
			m.buf.WriteByte(',')
		}
		m.writeString(e.Key)
		m.buf.WriteByte(':')
		if err := m.writeValue(e.Value, depth+1); err != nil {
			return errors.Wrapf(err, "field %q", e.Key)
		}
	}
	m.buf.WriteByte('}')
	return nil
}

func (m *marshaler) writeArray(arr []interface{}, depth int) error {
	if depth > bson.MaxNestingDepth {
		return errors.Wrapf(bson.ErrInvalidDocument, "nesting exceeds %d levels", bson.MaxNestingDepth)
	}
	m.buf.WriteByte('[')
	for i, v := range arr {
		if i > 0 {
			m.buf.WriteByte(',')
		}
		if err := m.writeValue(v, depth+1); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
	}
	m.buf.WriteByte(']')
	return nil
}

func (m *marshaler) writeValue(v interface{}, depth int) error {
	switch val := v.(type) {
	case nil:
		m.buf.WriteString("null")
	case bool:
		m.buf.WriteString(strconv.FormatBool(val))
	case string:
		m.writeString(val)
	case int32:
		m.wrap("$numberInt", strconv.FormatInt(int64(val), 10))
	case int64:
		m.wrap("$numberLong", strconv.FormatInt(val, 10))
	case float64:
		m.wrap("$numberDouble", formatDouble(val))
	case *bson.Document:
		return m.writeDocument(val, depth)
	case bson.Array:
		return m.writeArray(val, depth)
	case []interface{}:
		return m.writeArray(val, depth)
	case bson.ObjectID:
		m.wrap("$oid", val.Hex())
	case bson.Binary:
		m.buf.WriteString(`{"$binary":{"base64":`)
		m.writeString(base64.StdEncoding.EncodeToString(val.Data))
		m.buf.WriteString(`,"subType":`)
		m.writeString(fmt.Sprintf("%02x", val.Subtype))
		m.buf.WriteString("}}")
	case time.Time:
		m.buf.WriteString(`{"$date":`)
		m.wrap("$numberLong", strconv.FormatInt(val.UnixMilli(), 10))
		m.buf.WriteByte('}')
	case bson.Regex:
		m.buf.WriteString(`{"$regularExpression":{"pattern":`)
		m.writeString(val.Pattern)
		m.buf.WriteString(`,"options":`)
		m.writeString(val.Options.String())
		m.buf.WriteString("}}")
	case bson.DBPointer:
		m.buf.WriteString(`{"$dbPointer":{"$ref":`)
		m.writeString(val.Namespace)
		m.buf.WriteString(`,"$id":`)
		m.wrap("$oid", val.ID.Hex())
		m.buf.WriteString("}}")
	case bson.Code:
		m.wrap("$code", string(val))
	case bson.Symbol:
		m.wrap("$symbol", string(val))
	case bson.CodeWithScope:
		m.buf.WriteString(`{"$code":`)
		m.writeString(string(val.Code))
		m.buf.WriteString(`,"$scope":`)
		if err := m.writeDocument(val.Scope, depth+1); err != nil {
			return err
		}
		m.buf.WriteByte('}')
	case bson.Timestamp:
		fmt.Fprintf(&m.buf, `{"$timestamp":{"t":%d,"i":%d}}`, val.Seconds, val.Increment)
	case bson.MinKey:
		m.buf.WriteString(`{"$minKey":1}`)
	case bson.MaxKey:
		m.buf.WriteString(`{"$maxKey":1}`)
	default:
		t, payload, err := bson.MarshalValue(v)
		if err != nil {
			return err
		}
		canonical, err := bson.UnmarshalValue(t, payload)
		if err != nil {
			return err
		}
		return m.writeValue(canonical, depth)
	}
	return nil
}

// wrap writes {"key":"value"}.
func (m *marshaler) wrap(key, value string) {
	m.buf.WriteByte('{')
	m.writeString(key)
	m.buf.WriteByte(':')
	m.writeString(value)
	m.buf.WriteByte('}')
}

func (m *marshaler) writeString(s string) {
	// json.Marshal cannot fail on a string.
	b, _ := json.Marshal(s)
	m.buf.Write(b)
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	s := strconv.FormatFloat(f, 'G', -1, 64)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	return s
}
