package store

import (
	"bsonkit/testutil/testfs"
	"github.com/stretchr/testify/require"
	"github.com/syndtr/goleveldb/leveldb"
	"testing"
)

func setupLevelDB(t *testing.T) (*leveldb.DB, func()) {
	dir, done := testfs.NewTempDir(t)
	db, err := Open(dir)
	require.NoError(t, err)

	return db, func() {
		require.NoError(t, db.Close())
		done()
	}
}
