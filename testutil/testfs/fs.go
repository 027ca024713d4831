package testfs

import (
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"testing"
)

func NewTempDir(t *testing.T) (string, func()) {
	dir, err := ioutil.TempDir("", "bsonkit_")
	require.NoError(t, err)
	return dir, func() {
		require.NoError(t, os.RemoveAll(dir))
	}
}

// NewTempFile creates a file holding contents, rewound to the start.
func NewTempFile(t *testing.T, contents []byte) (*os.File, func()) {
	f, err := ioutil.TempFile("", "bsonkit_")
	require.NoError(t, err)
	_, err = f.Write(contents)
	require.NoError(t, err)
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	return f, func() {
		require.NoError(t, f.Close())
		require.NoError(t, os.Remove(f.Name()))
	}
}
