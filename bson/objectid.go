package bson

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"github.com/pkg/errors"
	"sync/atomic"
	"time"
)

// ObjectID is a 12-byte identifier: a 4-byte big-endian creation time in
// seconds, 5 bytes unique to the generating process and a 3-byte counter.
// The codec treats it as an opaque token.
type ObjectID [12]byte

var NilObjectID ObjectID

var (
	processUnique   [5]byte
	objectIDCounter uint32
)

// NewObjectID generates a new ObjectID for the current time.
func NewObjectID() ObjectID {
	return NewObjectIDFromTime(time.Now())
}

// NewObjectIDFromTime generates a new ObjectID with the given creation time.
func NewObjectIDFromTime(t time.Time) ObjectID {
	var id ObjectID
	binary.BigEndian.PutUint32(id[0:4], uint32(t.Unix()))
	copy(id[4:9], processUnique[:])
	c := atomic.AddUint32(&objectIDCounter, 1)
	id[9] = byte(c >> 16)
	id[10] = byte(c >> 8)
	id[11] = byte(c)
	return id
}

// ObjectIDFromHex parses the 24-character hex form of an ObjectID.
func ObjectIDFromHex(s string) (ObjectID, error) {
	if len(s) != 24 {
		return NilObjectID, errors.Errorf("object id hex must be 24 characters, got %d", len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return NilObjectID, errors.Wrap(err, "invalid object id hex")
	}
	var id ObjectID
	copy(id[:], b)
	return id, nil
}

// Hex returns the canonical 24-character lowercase hex form.
func (id ObjectID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ObjectID) String() string {
	return "ObjectID(\"" + id.Hex() + "\")"
}

// Timestamp returns the creation time embedded in the id.
func (id ObjectID) Timestamp() time.Time {
	return time.Unix(int64(binary.BigEndian.Uint32(id[0:4])), 0).UTC()
}

func (id ObjectID) IsZero() bool {
	return id == NilObjectID
}

func init() {
	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic(err)
	}
	copy(processUnique[:], seed[:5])
	objectIDCounter = binary.BigEndian.Uint32(seed[4:]) & 0x00ffffff
}
