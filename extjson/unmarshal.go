package extjson

import (
	"bsonkit/bson"
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"github.com/pkg/errors"
	"github.com/tidwall/jsonc"
	"io"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidJSON = errors.New("invalid extended json")

var (
	minInt32 = big.NewInt(math.MinInt32)
	maxInt32 = big.NewInt(math.MaxInt32)
)

// Unmarshal parses a JSON object into a document. Canonical and relaxed
// Extended JSON wrappers become their typed values; plain numbers become
// int32 or int64 when integral and float64 otherwise. Comments and trailing
// commas are accepted.
func Unmarshal(b []byte) (*bson.Document, error) {
	v, err := UnmarshalValue(b)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(*bson.Document)
	if !ok {
		return nil, errors.Wrap(ErrInvalidJSON, "top-level value is not an object")
	}
	return doc, nil
}

// UnmarshalAll parses a sequence of JSON objects separated by whitespace,
// such as newline-delimited JSON.
func UnmarshalAll(b []byte) ([]*bson.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
	dec.UseNumber()
	var docs []*bson.Document
	for dec.More() {
		raw, err := parse(dec, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", len(docs))
		}
		v, err := convert(raw, 0)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", len(docs))
		}
		doc, ok := v.(*bson.Document)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidJSON, "document %d is not an object", len(docs))
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// UnmarshalValue parses a single JSON value.
func UnmarshalValue(b []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(b)))
	dec.UseNumber()
	raw, err := parse(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.Wrap(ErrInvalidJSON, "trailing data after value")
	}
	return convert(raw, 0)
}

// member and object hold a parsed JSON object before wrapper detection.
type member struct {
	key   string
	value interface{}
}

type object []member

func (o object) get(key string) (interface{}, bool) {
	for _, m := range o {
		if m.key == key {
			return m.value, true
		}
	}
	return nil, false
}

// is reports whether o has exactly the given keys, in any order.
func (o object) is(keys ...string) bool {
	if len(o) != len(keys) {
		return false
	}
	for _, k := range keys {
		if _, ok := o.get(k); !ok {
			return false
		}
	}
	return true
}

func parse(dec *json.Decoder, depth int) (interface{}, error) {
	if depth > bson.MaxNestingDepth {
		return nil, errors.Wrapf(ErrInvalidJSON, "nesting exceeds %d levels", bson.MaxNestingDepth)
	}
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(ErrInvalidJSON, err.Error())
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		var obj object
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, errors.Wrap(ErrInvalidJSON, err.Error())
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidJSON, "object key %v is not a string", keyTok)
			}
			val, err := parse(dec, depth+1)
			if err != nil {
				return nil, err
			}
			obj = append(obj, member{key: key, value: val})
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(ErrInvalidJSON, err.Error())
		}
		if obj == nil {
			obj = object{}
		}
		return obj, nil
	case '[':
		arr := make([]interface{}, 0)
		for dec.More() {
			val, err := parse(dec, depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(ErrInvalidJSON, err.Error())
		}
		return arr, nil
	default:
		return nil, errors.Wrapf(ErrInvalidJSON, "unexpected delimiter %v", delim)
	}
}

func convert(raw interface{}, depth int) (interface{}, error) {
	switch v := raw.(type) {
	case nil, bool, string:
		return v, nil
	case json.Number:
		return parseNumber(string(v))
	case []interface{}:
		arr := make(bson.Array, len(v))
		for i, el := range v {
			conv, err := convert(el, depth+1)
			if err != nil {
				return nil, errors.Wrapf(err, "index %d", i)
			}
			arr[i] = conv
		}
		return arr, nil
	case object:
		if len(v) > 0 && strings.HasPrefix(v[0].key, "$") {
			val, ok, err := convertWrapper(v, depth)
			if err != nil || ok {
				return val, err
			}
		}
		return convertDocument(v, depth)
	default:
		return nil, errors.Wrapf(ErrInvalidJSON, "unexpected token %v", raw)
	}
}

func convertDocument(obj object, depth int) (*bson.Document, error) {
	doc := bson.NewDocument()
	for _, m := range obj {
		val, err := convert(m.value, depth+1)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", m.key)
		}
		doc.Set(m.key, val)
	}
	return doc, nil
}

// parseNumber narrows plain JSON integers to int32 or int64.
func parseNumber(s string) (interface{}, error) {
	if !strings.ContainsAny(s, ".eE") {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidJSON, "invalid number %q", s)
		}
		if n.Cmp(minInt32) >= 0 && n.Cmp(maxInt32) <= 0 {
			return int32(n.Int64()), nil
		}
		if !n.IsInt64() {
			return nil, errors.Wrapf(bson.ErrRange, "integer %s does not fit in 64 bits", s)
		}
		return n.Int64(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.Wrapf(bson.ErrRange, "number %s", s)
	}
	return f, nil
}

// convertWrapper interprets an Extended JSON type wrapper. ok is false when
// obj is an ordinary document that happens to start with a $ key.
func convertWrapper(obj object, depth int) (interface{}, bool, error) {
	var (
		val interface{}
		err error
	)
	switch {
	case obj.is("$oid"):
		val, err = wrappedObjectID(obj)
	case obj.is("$numberInt"):
		s, e := wrappedString(obj, "$numberInt")
		if e != nil {
			return nil, true, e
		}
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		val = int32(n)
	case obj.is("$numberLong"):
		s, e := wrappedString(obj, "$numberLong")
		if e != nil {
			return nil, true, e
		}
		val, err = strconv.ParseInt(s, 10, 64)
	case obj.is("$numberDouble"):
		s, e := wrappedString(obj, "$numberDouble")
		if e != nil {
			return nil, true, e
		}
		val, err = parseDouble(s)
	case obj.is("$binary"):
		val, err = wrappedBinary(obj)
	case obj.is("$date"):
		val, err = wrappedDate(obj)
	case obj.is("$regularExpression"):
		val, err = wrappedRegex(obj)
	case obj.is("$dbPointer"):
		val, err = wrappedDBPointer(obj)
	case obj.is("$code"):
		var s string
		s, err = wrappedString(obj, "$code")
		val = bson.Code(s)
	case obj.is("$code", "$scope"):
		val, err = wrappedCodeWithScope(obj, depth)
	case obj.is("$symbol"):
		var s string
		s, err = wrappedString(obj, "$symbol")
		val = bson.Symbol(s)
	case obj.is("$timestamp"):
		val, err = wrappedTimestamp(obj)
	case obj.is("$minKey"):
		val, err = bson.MinKey{}, wrappedOne(obj, "$minKey")
	case obj.is("$maxKey"):
		val, err = bson.MaxKey{}, wrappedOne(obj, "$maxKey")
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, true, errors.Wrapf(ErrInvalidJSON, "%s: %v", obj[0].key, err)
	}
	return val, true, nil
}

func wrappedString(obj object, key string) (string, error) {
	v, _ := obj.get(key)
	s, ok := v.(string)
	if !ok {
		return "", errors.Errorf("%s must be a string", key)
	}
	return s, nil
}

func wrappedObject(obj object, key string) (object, error) {
	v, _ := obj.get(key)
	o, ok := v.(object)
	if !ok {
		return nil, errors.Errorf("%s must be an object", key)
	}
	return o, nil
}

func wrappedUint32(obj object, key string) (uint32, error) {
	v, _ := obj.get(key)
	n, ok := v.(json.Number)
	if !ok {
		return 0, errors.Errorf("%s must be a number", key)
	}
	u, err := strconv.ParseUint(string(n), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(u), nil
}

func wrappedOne(obj object, key string) error {
	v, _ := obj.get(key)
	if n, ok := v.(json.Number); !ok || n.String() != "1" {
		return errors.Errorf("%s must be 1", key)
	}
	return nil
}

func wrappedObjectID(obj object) (bson.ObjectID, error) {
	s, err := wrappedString(obj, "$oid")
	if err != nil {
		return bson.NilObjectID, err
	}
	return bson.ObjectIDFromHex(s)
}

func parseDouble(s string) (float64, error) {
	switch s {
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	case "NaN":
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func wrappedBinary(obj object) (bson.Binary, error) {
	inner, err := wrappedObject(obj, "$binary")
	if err != nil {
		return bson.Binary{}, err
	}
	if !inner.is("base64", "subType") {
		return bson.Binary{}, errors.New("expected base64 and subType")
	}
	b64, err := wrappedString(inner, "base64")
	if err != nil {
		return bson.Binary{}, err
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return bson.Binary{}, err
	}
	st, err := wrappedString(inner, "subType")
	if err != nil {
		return bson.Binary{}, err
	}
	sub, err := hex.DecodeString(st)
	if err != nil || len(sub) != 1 {
		return bson.Binary{}, errors.Errorf("invalid subType %q", st)
	}
	return bson.Binary{Subtype: sub[0], Data: data}, nil
}

// wrappedDate accepts the canonical {"$numberLong"} form, a relaxed RFC 3339
// string, or a bare millisecond count.
func wrappedDate(obj object) (time.Time, error) {
	v, _ := obj.get("$date")
	switch d := v.(type) {
	case object:
		if !d.is("$numberLong") {
			return time.Time{}, errors.New("expected $numberLong")
		}
		s, err := wrappedString(d, "$numberLong")
		if err != nil {
			return time.Time{}, err
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, d)
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(t.UnixMilli()).UTC(), nil
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms).UTC(), nil
	default:
		return time.Time{}, errors.New("unsupported $date form")
	}
}

func wrappedRegex(obj object) (bson.Regex, error) {
	inner, err := wrappedObject(obj, "$regularExpression")
	if err != nil {
		return bson.Regex{}, err
	}
	if !inner.is("pattern", "options") {
		return bson.Regex{}, errors.New("expected pattern and options")
	}
	pattern, err := wrappedString(inner, "pattern")
	if err != nil {
		return bson.Regex{}, err
	}
	flags, err := wrappedString(inner, "options")
	if err != nil {
		return bson.Regex{}, err
	}
	opts, ok := bson.ParseRegexOptions(flags)
	if !ok {
		return bson.Regex{}, errors.Errorf("invalid options %q", flags)
	}
	return bson.Regex{Pattern: pattern, Options: opts}, nil
}

func wrappedDBPointer(obj object) (bson.DBPointer, error) {
	inner, err := wrappedObject(obj, "$dbPointer")
	if err != nil {
		return bson.DBPointer{}, err
	}
	if !inner.is("$ref", "$id") {
		return bson.DBPointer{}, errors.New("expected $ref and $id")
	}
	ns, err := wrappedString(inner, "$ref")
	if err != nil {
		return bson.DBPointer{}, err
	}
	idObj, err := wrappedObject(inner, "$id")
	if err != nil {
		return bson.DBPointer{}, err
	}
	if !idObj.is("$oid") {
		return bson.DBPointer{}, errors.New("$id must be an $oid")
	}
	id, err := wrappedObjectID(idObj)
	if err != nil {
		return bson.DBPointer{}, err
	}
	return bson.DBPointer{Namespace: ns, ID: id}, nil
}

func wrappedCodeWithScope(obj object, depth int) (bson.CodeWithScope, error) {
	code, err := wrappedString(obj, "$code")
	if err != nil {
		return bson.CodeWithScope{}, err
	}
	scopeObj, err := wrappedObject(obj, "$scope")
	if err != nil {
		return bson.CodeWithScope{}, err
	}
	scope, err := convertDocument(scopeObj, depth+1)
	if err != nil {
		return bson.CodeWithScope{}, err
	}
	return bson.CodeWithScope{Code: bson.Code(code), Scope: scope}, nil
}

func wrappedTimestamp(obj object) (bson.Timestamp, error) {
	inner, err := wrappedObject(obj, "$timestamp")
	if err != nil {
		return bson.Timestamp{}, err
	}
	if !inner.is("t", "i") {
		return bson.Timestamp{}, errors.New("expected t and i")
	}
	secs, err := wrappedUint32(inner, "t")
	if err != nil {
		return bson.Timestamp{}, err
	}
	inc, err := wrappedUint32(inner, "i")
	if err != nil {
		return bson.Timestamp{}, err
	}
	return bson.Timestamp{Increment: inc, Seconds: secs}, nil
}
