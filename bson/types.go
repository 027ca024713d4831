package bson

import (
	"bytes"
	"strings"
	"time"
)

// Type is the one-byte tag preceding every element on the wire.
type Type byte

const (
	TypeDouble        Type = 0x01
	TypeString        Type = 0x02
	TypeDocument      Type = 0x03
	TypeArray         Type = 0x04
	TypeBinary        Type = 0x05
	TypeUndefined     Type = 0x06
	TypeObjectID      Type = 0x07
	TypeBoolean       Type = 0x08
	TypeDateTime      Type = 0x09
	TypeNull          Type = 0x0A
	TypeRegex         Type = 0x0B
	TypeDBPointer     Type = 0x0C
	TypeCode          Type = 0x0D
	TypeSymbol        Type = 0x0E
	TypeCodeWithScope Type = 0x0F
	TypeInt32         Type = 0x10
	TypeTimestamp     Type = 0x11
	TypeInt64         Type = 0x12
	TypeMinKey        Type = 0xFF
	TypeMaxKey        Type = 0x7F
)

var typeNames = map[Type]string{
	TypeDouble:        "double",
	TypeString:        "string",
	TypeDocument:      "document",
	TypeArray:         "array",
	TypeBinary:        "binary",
	TypeUndefined:     "undefined",
	TypeObjectID:      "objectId",
	TypeBoolean:       "bool",
	TypeDateTime:      "date",
	TypeNull:          "null",
	TypeRegex:         "regex",
	TypeDBPointer:     "dbPointer",
	TypeCode:          "javascript",
	TypeSymbol:        "symbol",
	TypeCodeWithScope: "javascriptWithScope",
	TypeInt32:         "int",
	TypeTimestamp:     "timestamp",
	TypeInt64:         "long",
	TypeMinKey:        "minKey",
	TypeMaxKey:        "maxKey",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether t is a tag this package understands.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// Binary subtypes.
const (
	BinaryGeneric     byte = 0x00
	BinaryFunction    byte = 0x01
	BinaryOld         byte = 0x02
	BinaryUUIDOld     byte = 0x03
	BinaryUUID        byte = 0x04
	BinaryMD5         byte = 0x05
	BinaryUserDefined byte = 0x80
)

// Binary is a byte payload tagged with a subtype.
type Binary struct {
	Subtype byte
	Data    []byte
}

func (b Binary) Equal(other Binary) bool {
	return b.Subtype == other.Subtype && bytes.Equal(b.Data, other.Data)
}

// DateTime is a UTC instant in milliseconds since the Unix epoch.
type DateTime int64

// NewDateTime truncates t to millisecond precision.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t.UnixMilli())
}

func (d DateTime) Time() time.Time {
	return time.UnixMilli(int64(d)).UTC()
}

// RegexOptions is the flag set of a Regex. Each flag is one bit.
type RegexOptions uint8

const (
	RegexCaseInsensitive RegexOptions = 1 << iota
	RegexLocale
	RegexMultiline
	RegexDotAll
	RegexUnicode
	RegexExtended
)

// regexFlagChars is in canonical order; the wire form lists flags
// alphabetically.
var regexFlagChars = []struct {
	opt RegexOptions
	c   byte
}{
	{RegexCaseInsensitive, 'i'},
	{RegexLocale, 'l'},
	{RegexMultiline, 'm'},
	{RegexDotAll, 's'},
	{RegexUnicode, 'u'},
	{RegexExtended, 'x'},
}

func (o RegexOptions) String() string {
	var sb strings.Builder
	for _, f := range regexFlagChars {
		if o&f.opt != 0 {
			sb.WriteByte(f.c)
		}
	}
	return sb.String()
}

// ParseRegexOptions parses a flag string such as "im". Flags may appear in
// any order; unknown flags return false.
func ParseRegexOptions(s string) (RegexOptions, bool) {
	var o RegexOptions
	for i := 0; i < len(s); i++ {
		found := false
		for _, f := range regexFlagChars {
			if s[i] == f.c {
				o |= f.opt
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return o, true
}

// Regex is a regular expression pattern with its flags.
type Regex struct {
	Pattern string
	Options RegexOptions
}

func (r Regex) String() string {
	return "/" + r.Pattern + "/" + r.Options.String()
}

// Code is JavaScript source.
type Code string

// CodeWithScope is JavaScript source bundled with the variables it closes
// over.
type CodeWithScope struct {
	Code  Code
	Scope *Document
}

// Symbol is an interned string. It is kept distinct from string so that
// decoded symbols re-encode as symbols.
type Symbol string

// DBPointer references a document by namespace and object id.
type DBPointer struct {
	Namespace string
	ID        ObjectID
}

// Timestamp is the internal replication timestamp. It is unrelated to
// DateTime.
type Timestamp struct {
	Increment uint32
	Seconds   uint32
}

// MinKey compares lower than every other value.
type MinKey struct{}

// MaxKey compares higher than every other value.
type MaxKey struct{}

// Array is an ordered list of values.
type Array []interface{}
