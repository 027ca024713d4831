package bson

// IDKey is the identifier field name.
const IDKey = "_id"

// Elem is a single key/value pair of a document.
type Elem struct {
	Key   string
	Value interface{}
}

// D is an ordered list of elements. Unlike Document it does not enforce
// unique keys, which makes it convenient for literals:
//
//	bson.D{{"a", 1}, {"b", "two"}}
type D []Elem

// Document is an ordered mapping of unique string keys to values. Iteration
// order is insertion order. The zero value is an empty document ready to
// use.
type Document struct {
	elems []Elem
	index map[string]int
}

func NewDocument() *Document {
	return &Document{
		index: make(map[string]int),
	}
}

// NewDocumentFromElems builds a document from elems. A repeated key
// replaces the earlier value and keeps the earlier position.
func NewDocumentFromElems(elems ...Elem) *Document {
	d := NewDocument()
	for _, e := range elems {
		d.Set(e.Key, e.Value)
	}
	return d
}

// Set stores value under key. An existing key keeps its position.
func (d *Document) Set(key string, value interface{}) *Document {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.elems[i].Value = value
		return d
	}
	d.index[key] = len(d.elems)
	d.elems = append(d.elems, Elem{Key: key, Value: value})
	return d
}

func (d *Document) Get(key string) (interface{}, bool) {
	if d == nil {
		return nil, false
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.elems[i].Value, true
}

func (d *Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Delete removes key and reports whether it was present.
func (d *Document) Delete(key string) bool {
	if d == nil {
		return false
	}
	i, ok := d.index[key]
	if !ok {
		return false
	}
	d.elems = append(d.elems[:i], d.elems[i+1:]...)
	delete(d.index, key)
	for j := i; j < len(d.elems); j++ {
		d.index[d.elems[j].Key] = j
	}
	return true
}

func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.elems)
}

func (d *Document) Keys() []string {
	keys := make([]string, 0, d.Len())
	for _, e := range d.Elems() {
		keys = append(keys, e.Key)
	}
	return keys
}

// Elems returns the elements in order. The returned slice is a copy.
func (d *Document) Elems() []Elem {
	if d == nil {
		return nil
	}
	out := make([]Elem, len(d.elems))
	copy(out, d.elems)
	return out
}

// Copy returns a shallow copy of the document.
func (d *Document) Copy() *Document {
	out := NewDocument()
	if d == nil {
		return out
	}
	out.elems = d.Elems()
	for k, v := range d.index {
		out.index[k] = v
	}
	return out
}

// Equal reports whether both documents hold equal values under the same
// keys in the same order.
func (d *Document) Equal(other *Document) bool {
	return elemsEqual(d.elemsOrNil(), other.elemsOrNil())
}

// Document converts d into a Document. Later duplicates replace earlier
// values.
func (d D) Document() *Document {
	return NewDocumentFromElems(d...)
}
