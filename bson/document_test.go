package bson

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"testing"
	"time"
)

func TestDocument_SetGetDelete(t *testing.T) {
	doc := NewDocument()
	assert.Equal(t, 0, doc.Len())
	assert.False(t, doc.Has("a"))

	doc.Set("b", 1).Set("a", 2).Set("c", 3)
	assert.Equal(t, []string{"b", "a", "c"}, doc.Keys())

	doc.Set("a", "replaced")
	assert.Equal(t, []string{"b", "a", "c"}, doc.Keys())
	v, ok := doc.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "replaced", v)

	assert.True(t, doc.Delete("b"))
	assert.False(t, doc.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, doc.Keys())
	v, ok = doc.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	doc.Set("b", 4)
	assert.Equal(t, []string{"a", "c", "b"}, doc.Keys())
}

func TestDocument_ZeroValue(t *testing.T) {
	var doc Document
	doc.Set("x", 1)
	assert.True(t, doc.Has("x"))

	var nilDoc *Document
	assert.Equal(t, 0, nilDoc.Len())
	assert.False(t, nilDoc.Has("x"))
	assert.Empty(t, nilDoc.Keys())
	assert.True(t, nilDoc.Equal(NewDocument()))

	b, err := Encode(nilDoc)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x05, 0x00, 0x00, 0x00, 0x00}, b)
}

func TestDocument_CopyIsIndependent(t *testing.T) {
	doc := NewDocument().Set("a", 1).Set("b", 2)
	cp := doc.Copy()
	cp.Set("c", 3)
	cp.Delete("a")
	assert.Equal(t, []string{"a", "b"}, doc.Keys())
	assert.Equal(t, []string{"b", "c"}, cp.Keys())
}

func TestDocument_ElemsIsACopy(t *testing.T) {
	doc := NewDocument().Set("a", 1)
	elems := doc.Elems()
	elems[0].Key = "mutated"
	assert.Equal(t, []string{"a"}, doc.Keys())
}

func TestNewDocumentFromElems(t *testing.T) {
	doc := NewDocumentFromElems(Elem{"a", 1}, Elem{"b", 2}, Elem{"a", 3})
	assert.Equal(t, []string{"a", "b"}, doc.Keys())
	v, _ := doc.Get("a")
	assert.Equal(t, 3, v)

	assert.True(t, D{{"a", 3}, {"b", 2}}.Document().Equal(doc))
}

func TestEqual(t *testing.T) {
	now := time.Now()
	tests := []struct {
		a, b  interface{}
		equal bool
	}{
		{int32(1), int32(1), true},
		{int32(1), int64(1), false},
		{"a", Symbol("a"), false},
		{math.NaN(), math.NaN(), true},
		{now, now.In(time.UTC), true},
		{Array{1, "a"}, []interface{}{1, "a"}, true},
		{Array{1}, Array{1, 2}, false},
		{D{{"a", 1}}, NewDocument().Set("a", 1), true},
		{D{{"a", 1}, {"b", 2}}, D{{"b", 2}, {"a", 1}}, false},
		{Binary{Data: []byte{1}}, Binary{Data: []byte{1}}, true},
		{Binary{Data: []byte{1}}, Binary{Subtype: 1, Data: []byte{1}}, false},
		{CodeWithScope{Code: "x", Scope: NewDocument()}, CodeWithScope{Code: "x"}, true},
		{nil, nil, true},
		{MinKey{}, MaxKey{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.equal, Equal(tt.a, tt.b), "%#v vs %#v", tt.a, tt.b)
	}
}
