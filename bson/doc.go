/*
Package bson implements the BSON document encoding used by document
databases.

Documents are ordered collections of keyed values. Document keeps keys
unique and preserves insertion order; D is a plain ordered slice of elements
that may repeat keys and is accepted anywhere a document is.

Value types:

	- double: float64 (float32 accepted), 8 little-endian IEEE-754 bytes.
	- string: string, int32 length prefix, UTF-8 bytes and a 0x00 terminator.
	- document: *Document, Document or D.
	- array: Array, encoded as a document keyed "0", "1", ...
	- binary: Binary ([]byte accepted as the generic subtype).
	- object id: ObjectID, 12 raw bytes.
	- bool: bool, a single 0x00 or 0x01 byte.
	- datetime: time.Time (DateTime accepted), int64 milliseconds since the
	  epoch. Decoded values are always in UTC.
	- null: nil.
	- regex: Regex, pattern and flags as two cstrings.
	- db pointer: DBPointer, namespace string and object id.
	- code: Code. code with scope: CodeWithScope. symbol: Symbol.
	- int32: int32. int64: int64. Other Go integers use int32 when they fit
	  and int64 otherwise.
	- timestamp: Timestamp, increment then seconds as two uint32 values.
	- min key and max key: MinKey and MaxKey.

The easiest way to use this package is through Encode and Decode:

	doc := bson.NewDocument()
	doc.Set("name", "Spongebob")
	doc.Set("age", 42)
	b, err := bson.Encode(doc)

	out, err := bson.Decode(b)

Serialize exposes the key validation and _id placement switches, and Codec
carries the same switches plus a document size ceiling:

	codec := &bson.Codec{MoveIDFirst: true, MaxDocumentSize: 16 << 20}
	b, err := codec.Encode(doc)

Errors returned by this package wrap one of ErrInvalidDocument, ErrRange,
ErrInvalidStringEncoding or ErrDecode and can be tested with errors.Is.
*/
package bson
