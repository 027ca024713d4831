package bson

import (
	"bytes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"io"
	"testing"
	"time"
)

func TestDecode_Timestamp(t *testing.T) {
	doc, err := Decode([]byte{
		0x13, 0x00, 0x00, 0x00,
		0x11, 0x74, 0x65, 0x73,
		0x74, 0x00, 0x04, 0x00,
		0x00, 0x00, 0x14, 0x00,
		0x00, 0x00, 0x00,
	})
	require.NoError(t, err)
	v, ok := doc.Get("test")
	require.True(t, ok)
	require.Equal(t, Timestamp{Increment: 4, Seconds: 20}, v)
}

func TestDecode_Symbol(t *testing.T) {
	doc, err := Decode(mustHex(t, "120000000e73796d0004000000666f6f0000"))
	require.NoError(t, err)
	v, _ := doc.Get("sym")
	require.Equal(t, Symbol("foo"), v)
}

func TestDecode_DateIsUTC(t *testing.T) {
	doc, err := Decode(mustHex(t, "10000000096400ffffffffffffffff00"))
	require.NoError(t, err)
	v, _ := doc.Get("d")
	date, ok := v.(time.Time)
	require.True(t, ok)
	require.Equal(t, time.UTC, date.Location())
	require.True(t, date.Equal(time.Unix(0, 0).Add(-time.Millisecond)))

	b, err := Encode(D{{"date", time.Now()}})
	require.NoError(t, err)
	doc, err = Decode(b)
	require.NoError(t, err)
	v, _ = doc.Get("date")
	require.Equal(t, time.UTC, v.(time.Time).Location())
}

func TestDecode_TrailingBytesIgnored(t *testing.T) {
	b := append(mustHex(t, "160000000268656c6c6f0006000000776f726c640000"), 0xde, 0xad, 0xbe, 0xef)
	doc, err := Decode(b)
	require.NoError(t, err)
	v, _ := doc.Get("hello")
	require.Equal(t, "world", v)
}

func TestDecode_Undefined(t *testing.T) {
	doc, err := Decode(mustHex(t, "16000000106100010000000675001062000200000000"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, doc.Keys())

	doc, err = Decode(mustHex(t, "2000000004617272001600000010300001000000063100103200030000000000"))
	require.NoError(t, err)
	v, _ := doc.Get("arr")
	require.Equal(t, Array{int32(1), int32(3)}, v)
}

func TestDecode_DuplicateKeys(t *testing.T) {
	doc, err := Decode(mustHex(t, "1a00000010610001000000106200020000001061000300000000"))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, doc.Keys())
	v, _ := doc.Get("a")
	require.Equal(t, int32(3), v)
}

func TestDecode_OldBinary(t *testing.T) {
	doc, err := Decode(mustHex(t, "1c0000000562696e000d000000020900000062696e737472696e6700"))
	require.NoError(t, err)
	v, _ := doc.Get("bin")
	require.Equal(t, Binary{Subtype: BinaryOld, Data: []byte("binstring")}, v)
}

func TestDecode_DoesNotAliasInput(t *testing.T) {
	b := mustHex(t, "140000000562696e000500000080010203040500")
	doc, err := Decode(b)
	require.NoError(t, err)
	for i := range b {
		b[i] = 0
	}
	v, _ := doc.Get("bin")
	require.EqualValues(t, []byte{1, 2, 3, 4, 5}, v.(Binary).Data)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		msg  string
	}{
		{"empty", "", "too short for a length prefix"},
		{"short prefix", "0500", "too short for a length prefix"},
		{"length below minimum", "04000000", "invalid document length"},
		{"negative length", "ffffffff00", "invalid document length"},
		{"length beyond buffer", "ff000000106100010000000000", "exceeds the 13 byte buffer"},
		{"missing terminator", "0500000001", "not terminated"},
		{"unknown tag", "0800000020610000", "unknown type tag 0x20"},
		{"bad bool", "090000000862000200", "invalid boolean value 0x02"},
		{"string too long", "0d000000026100ff0000000000", "need 255 bytes"},
		{"negative string length", "0d000000026100ffffffff0000", "invalid string length -1"},
		{"invalid utf8 string", "0e00000002610002000000e90000", "not valid UTF-8"},
		{"invalid utf8 key", "0c00000010e9000100000000", "not valid UTF-8"},
		{"early terminator", "09000000000a610000", "terminator found"},
		{"embedded document not terminated", "0d000000036e00050000000100", "not terminated"},
		{"embedded document overruns parent", "0d000000036e00060000000000", "need 6 bytes"},
		{"non-numeric array key", "140000000461000c000000107800010000000000", "array key \"x\" out of sequence"},
		{"array key gap", "1d00000004617272001300000010300001000000103200030000000000", "array key \"2\" out of sequence"},
		{"truncated int32", "0a000000106100010000", "need 4 bytes"},
		{"code with scope length mismatch", "180000000f63001000000002000000780005000000000000", "disagrees with its contents"},
		{"unknown regex flag", "0c0000000b72006100710000", "invalid regex flags"},
		{"old binary inner length", "120000000562000500000002030000000100", "inner length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode(mustHex(t, tt.hex))
			require.Nil(t, doc)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrDecode), "%v", err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDecode_NeverPanicsOnTruncation(t *testing.T) {
	doc := NewDocument().
		Set("s", "string").
		Set("d", NewDocument().Set("a", Array{1, "two", 3.0})).
		Set("cws", CodeWithScope{Code: "x", Scope: NewDocument().Set("y", 1)}).
		Set("re", Regex{Pattern: "a", Options: RegexMultiline}).
		Set("p", DBPointer{Namespace: "ns", ID: NewObjectID()}).
		Set("ts", Timestamp{Increment: 1, Seconds: 2})
	b, err := Encode(doc)
	require.NoError(t, err)

	for i := 0; i < len(b); i++ {
		truncated := make([]byte, i)
		copy(truncated, b)
		require.NotPanics(t, func() {
			_, err := Decode(truncated)
			require.Error(t, err)
		})

		// rewrite the prefix so the truncated body looks self-consistent
		if i >= 5 {
			patched := make([]byte, i)
			copy(patched, b)
			patched[0], patched[1], patched[2], patched[3] = byte(i), 0, 0, 0
			require.NotPanics(t, func() {
				_, err := Decode(patched)
				require.Error(t, err)
			})
		}
	}
}

func TestReadDocument(t *testing.T) {
	var buf bytes.Buffer
	docs := []*Document{
		NewDocument().Set("doc", "hello, world"),
		NewDocument().Set("n", int32(2)),
	}
	for _, doc := range docs {
		require.NoError(t, WriteDocument(&buf, doc))
	}

	r := bytes.NewReader(buf.Bytes())
	for _, exp := range docs {
		doc, err := ReadDocument(r)
		require.NoError(t, err)
		require.True(t, exp.Equal(doc))
	}
	_, err := ReadDocument(r)
	require.Equal(t, io.EOF, err)

	_, err = ReadDocument(bytes.NewReader([]byte{0x10, 0x00}))
	require.True(t, errors.Is(err, ErrDecode))

	_, err = ReadDocument(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0x7f, 0x00}))
	require.True(t, errors.Is(err, ErrDecode))
	require.Contains(t, err.Error(), "truncated document")

	codec := &Codec{MaxDocumentSize: 16}
	_, err = codec.ReadDocument(bytes.NewReader([]byte{0xff, 0xff, 0x00, 0x00, 0x00}))
	require.True(t, errors.Is(err, ErrDecode))
	require.Contains(t, err.Error(), "maximum")
}

func TestDocumentSize(t *testing.T) {
	size, err := DocumentSize(mustHex(t, "160000000268656c6c6f0006000000776f726c640000"))
	require.NoError(t, err)
	require.Equal(t, 22, size)

	_, err = DocumentSize([]byte{0x01})
	require.True(t, errors.Is(err, ErrDecode))
}
