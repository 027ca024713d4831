package store

import (
	"bsonkit/bson"
	"context"
	"fmt"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"testing"
)

var testCodec = &bson.Codec{MoveIDFirst: true, MaxDocumentSize: bson.DefaultMaxDocumentSize}

func TestDocuments_PutGet(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	doc := bson.NewDocument().Set("name", "a").Set("_id", int32(7))
	id, err := PutDocument(db, testCodec, doc)
	require.NoError(t, err)
	require.Equal(t, int32(7), id)

	got, err := GetDocument(db, testCodec, int32(7))
	require.NoError(t, err)
	require.Equal(t, []string{"_id", "name"}, got.Keys())

	// native ints narrow the same way on lookup
	got, err = GetDocument(db, testCodec, 7)
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())

	_, err = GetDocument(db, testCodec, int64(7))
	require.True(t, errors.Is(err, ErrNotFound))

	has, err := HasDocument(db, int32(7))
	require.NoError(t, err)
	require.True(t, has)
}

func TestDocuments_GeneratesID(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	doc := bson.NewDocument().Set("x", true)
	id, err := PutDocument(db, testCodec, doc)
	require.NoError(t, err)
	oid, ok := id.(bson.ObjectID)
	require.True(t, ok)
	require.False(t, oid.IsZero())
	require.False(t, doc.Has("_id"))

	got, err := GetDocument(db, testCodec, oid)
	require.NoError(t, err)
	require.Equal(t, []string{"_id", "x"}, got.Keys())
}

func TestDocuments_Overwrite(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	_, err := PutDocument(db, testCodec, bson.NewDocument().Set("_id", "k").Set("v", int32(1)))
	require.NoError(t, err)
	_, err = PutDocument(db, testCodec, bson.NewDocument().Set("_id", "k").Set("v", int32(2)))
	require.NoError(t, err)

	got, err := GetDocument(db, testCodec, "k")
	require.NoError(t, err)
	v, _ := got.Get("v")
	require.Equal(t, int32(2), v)
}

func TestDocuments_EncodeFailureWritesNothing(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	_, err := PutDocument(db, testCodec, bson.NewDocument().Set("_id", 1).Set("bad", make(chan int)))
	require.True(t, errors.Is(err, bson.ErrInvalidDocument))
	has, err := HasDocument(db, 1)
	require.NoError(t, err)
	require.False(t, has)
}

func TestDocuments_Delete(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	_, err := PutDocument(db, testCodec, bson.NewDocument().Set("_id", "gone"))
	require.NoError(t, err)
	require.NoError(t, DeleteDocument(db, "gone"))
	require.True(t, errors.Is(DeleteDocument(db, "gone"), ErrNotFound))
	_, err = GetDocument(db, testCodec, "gone")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestDocuments_PutDocuments(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	var docs []*bson.Document
	for i := 0; i < 50; i++ {
		docs = append(docs, bson.NewDocument().Set("_id", fmt.Sprintf("doc-%d", i)).Set("n", i))
	}
	ids, err := PutDocuments(context.Background(), db, testCodec, docs, 4)
	require.NoError(t, err)
	require.Len(t, ids, 50)
	require.Equal(t, "doc-49", ids[49])

	stream, err := StreamDocuments(db, testCodec)
	require.NoError(t, err)
	seen := make(map[string]bool)
	for {
		doc, err := stream.Next()
		require.NoError(t, err)
		if doc == nil {
			break
		}
		id, _ := doc.Get("_id")
		seen[id.(string)] = true
	}
	require.NoError(t, stream.Close())
	require.Len(t, seen, 50)

	count, err := TruncateDocuments(db)
	require.NoError(t, err)
	require.Equal(t, 50, count)
	has, err := HasDocument(db, "doc-0")
	require.NoError(t, err)
	require.False(t, has)
}

func TestDocuments_PutDocumentsAllOrNothing(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	docs := []*bson.Document{
		bson.NewDocument().Set("_id", "ok"),
		bson.NewDocument().Set("_id", "bad").Set("v", struct{}{}),
	}
	_, err := PutDocuments(context.Background(), db, testCodec, docs, 2)
	require.Error(t, err)
	require.True(t, errors.Is(err, bson.ErrInvalidDocument))

	has, err := HasDocument(db, "ok")
	require.NoError(t, err)
	require.False(t, has)
}

func TestDocuments_PutDocumentsCanceled(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PutDocuments(ctx, db, testCodec, []*bson.Document{bson.NewDocument()}, 1)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestDocuments_Corruption(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	_, err := PutDocument(db, testCodec, bson.NewDocument().Set("_id", "c").Set("v", "value"))
	require.NoError(t, err)

	key, err := DocumentKey("c")
	require.NoError(t, err)
	value, err := db.Get(key, nil)
	require.NoError(t, err)
	value[len(value)-3] ^= 0xff
	require.NoError(t, WithTx(db, func(tx *leveldb.Transaction) error {
		return tx.Put(key, value, nil)
	}))

	_, err = GetDocument(db, testCodec, "c")
	require.True(t, errors.Is(err, ErrCorrupt))

	require.NoError(t, db.Put(key, []byte{1, 2}, nil))
	_, err = GetDocument(db, testCodec, "c")
	require.True(t, errors.Is(err, ErrCorrupt))
}

func TestWithTx_Rollback(t *testing.T) {
	db, done := setupLevelDB(t)
	defer done()

	err := WithTx(db, func(tx *leveldb.Transaction) error {
		require.NoError(t, tx.Put([]byte("k"), []byte("v"), nil))
		return errors.New("abort")
	})
	require.Error(t, err)
	has, err := db.Has([]byte("k"), nil)
	require.NoError(t, err)
	require.False(t, has)
}
