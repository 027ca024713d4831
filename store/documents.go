package store

import (
	"bsonkit/bson"
	"bsonkit/crypto"
	"context"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound = errors.New("document not found")
	ErrCorrupt  = errors.New("stored document failed digest check")
)

var (
	docsPrefix    = Prefixer("docs")
	docDataPrefix = Prefixer(string(docsPrefix("doc")))
)

// record is a prepared write. value is the BLAKE2b-256 digest of the
// encoded document followed by the document itself.
type record struct {
	id    interface{}
	key   []byte
	value []byte
}

// DocumentKey returns the database key for an _id value. The key is derived
// from the value's type tag and encoded payload, so int32(1) and int64(1)
// name different documents.
func DocumentKey(id interface{}) ([]byte, error) {
	t, payload, err := bson.MarshalValue(id)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding _id")
	}
	h := crypto.Blake2B256([]byte{byte(t)}, payload)
	return docDataPrefix(h.String()), nil
}

// withID returns doc unchanged if it has an _id, or a copy with a new
// ObjectID in front of its other fields.
func withID(doc *bson.Document) *bson.Document {
	if doc.Has(bson.IDKey) {
		return doc
	}
	elems := append([]bson.Elem{{Key: bson.IDKey, Value: bson.NewObjectID()}}, doc.Elems()...)
	return bson.NewDocumentFromElems(elems...)
}

func prepare(codec *bson.Codec, doc *bson.Document) (*record, error) {
	doc = withID(doc)
	id, _ := doc.Get(bson.IDKey)
	key, err := DocumentKey(id)
	if err != nil {
		return nil, err
	}
	encoded, err := codec.Encode(doc)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding document")
	}
	digest := crypto.Blake2B256(encoded)
	value := make([]byte, 0, crypto.HashSize+len(encoded))
	value = append(value, digest[:]...)
	value = append(value, encoded...)
	return &record{id: id, key: key, value: value}, nil
}

// PutDocument stores doc under its _id, generating an ObjectID when the
// document has none. The caller's document is never modified. Returns the
// _id the document was stored under.
func PutDocument(db *leveldb.DB, codec *bson.Codec, doc *bson.Document) (interface{}, error) {
	var id interface{}
	err := WithTx(db, func(tx *leveldb.Transaction) error {
		var err error
		id, err = PutDocumentTx(tx, codec, doc)
		return err
	})
	return id, err
}

func PutDocumentTx(tx *leveldb.Transaction, codec *bson.Codec, doc *bson.Document) (interface{}, error) {
	rec, err := prepare(codec, doc)
	if err != nil {
		return nil, err
	}
	if err := tx.Put(rec.key, rec.value, nil); err != nil {
		return nil, errors.Wrap(err, "error writing document")
	}
	logger.Trace("stored document", "id", rec.id, "size", len(rec.value)-crypto.HashSize)
	return rec.id, nil
}

// PutDocuments encodes docs on up to workers goroutines and writes them in a
// single transaction. Either every document is stored or none are.
func PutDocuments(ctx context.Context, db *leveldb.DB, codec *bson.Codec, docs []*bson.Document, workers int) ([]interface{}, error) {
	if workers < 1 {
		workers = 1
	}
	recs := make([]*record, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, doc := range docs {
		i, doc := i, doc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := prepare(codec, doc)
			if err != nil {
				return errors.Wrapf(err, "document %d", i)
			}
			recs[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]interface{}, len(recs))
	err := WithTx(db, func(tx *leveldb.Transaction) error {
		for i, rec := range recs {
			if err := tx.Put(rec.key, rec.value, nil); err != nil {
				return errors.Wrap(err, "error writing document")
			}
			ids[i] = rec.id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("stored documents", "count", len(ids), "workers", workers)
	return ids, nil
}

func GetDocument(db *leveldb.DB, codec *bson.Codec, id interface{}) (*bson.Document, error) {
	key, err := DocumentKey(id)
	if err != nil {
		return nil, err
	}
	value, err := db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "error getting document")
	}
	return decodeRecord(codec, value)
}

func HasDocument(db *leveldb.DB, id interface{}) (bool, error) {
	key, err := DocumentKey(id)
	if err != nil {
		return false, err
	}
	has, err := db.Has(key, nil)
	if err != nil {
		return false, errors.Wrap(err, "error checking for document existence")
	}
	return has, nil
}

func DeleteDocument(db *leveldb.DB, id interface{}) error {
	key, err := DocumentKey(id)
	if err != nil {
		return err
	}
	return WithTx(db, func(tx *leveldb.Transaction) error {
		has, err := tx.Has(key, nil)
		if err != nil {
			return errors.Wrap(err, "error checking for document existence")
		}
		if !has {
			return ErrNotFound
		}
		if err := tx.Delete(key, nil); err != nil {
			return errors.Wrap(err, "error deleting document")
		}
		return nil
	})
}

// TruncateDocuments deletes every stored document and returns how many were
// removed.
func TruncateDocuments(db *leveldb.DB) (int, error) {
	var count int
	err := WithTx(db, func(tx *leveldb.Transaction) error {
		var keys [][]byte
		iter := tx.NewIterator(util.BytesPrefix(docDataPrefix()), nil)
		for iter.Next() {
			keys = append(keys, append([]byte(nil), iter.Key()...))
		}
		err := iter.Error()
		iter.Release()
		if err != nil {
			return errors.Wrap(err, "error iterating documents")
		}
		for _, k := range keys {
			if err := tx.Delete(k, nil); err != nil {
				return errors.Wrap(err, "error deleting document")
			}
		}
		count = len(keys)
		return nil
	})
	if err != nil {
		return 0, err
	}
	logger.Info("truncated documents", "count", count)
	return count, nil
}

func decodeRecord(codec *bson.Codec, value []byte) (*bson.Document, error) {
	if len(value) < crypto.HashSize {
		return nil, errors.Wrap(ErrCorrupt, "record is shorter than its digest")
	}
	digest, err := crypto.NewHashFromBytes(value[:crypto.HashSize])
	if err != nil {
		return nil, err
	}
	encoded := value[crypto.HashSize:]
	if crypto.Blake2B256(encoded) != digest {
		return nil, ErrCorrupt
	}
	doc, err := codec.Decode(encoded)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding stored document")
	}
	return doc, nil
}

type DocumentStream struct {
	codec *bson.Codec
	iter  iterator.Iterator
}

// Next returns the next document in key order, or nil when the stream is
// exhausted.
func (ds *DocumentStream) Next() (*bson.Document, error) {
	if !ds.iter.Next() {
		return nil, nil
	}
	return decodeRecord(ds.codec, ds.iter.Value())
}

func (ds *DocumentStream) Close() error {
	ds.iter.Release()
	return ds.iter.Error()
}

func StreamDocuments(db *leveldb.DB, codec *bson.Codec) (*DocumentStream, error) {
	iter := db.NewIterator(util.BytesPrefix(docDataPrefix()), nil)
	return &DocumentStream{
		codec: codec,
		iter:  iter,
	}, nil
}
