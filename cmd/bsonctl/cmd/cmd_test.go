package cmd

import (
	"bsonkit/testutil/testfs"
	"bytes"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"path"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	var buf bytes.Buffer
	rootCmd.SetOutput(&buf)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestBsonctl(t *testing.T) {
	dir, done := testfs.NewTempDir(t)
	defer done()
	home := path.Join(dir, "home")
	in := path.Join(dir, "in.json")
	out := path.Join(dir, "out.bson")
	require.NoError(t, ioutil.WriteFile(in, []byte(`
		// two documents
		{"name": "a", "_id": 1}
		{"_id": "two", "n": {"$numberLong": "5"}}
	`), 0644))

	require.Contains(t, run(t, "init", "--home", home), "Successfully initialized")
	require.Contains(t, run(t, "version", "--home", home), "bsonctl ")

	run(t, "encode", "--home", home, "--out", out, in)
	decoded := run(t, "decode", "--home", home, "--format", "json", out)
	require.Equal(t, `{"_id":{"$numberInt":"1"},"name":"a"}`+"\n"+
		`{"_id":"two","n":{"$numberLong":"5"}}`+"\n", decoded)

	hashes := strings.Split(strings.TrimSpace(run(t, "hash", "--home", home, "--format", "text", out)), "\n")
	require.Len(t, hashes, 2)
	require.Len(t, strings.Fields(hashes[0])[0], 64)

	table := run(t, "inspect", "--home", home, "--format", "text", out)
	require.Contains(t, table, "name")
	require.Contains(t, table, "long")

	ids := run(t, "store", "put", "--home", home, in)
	require.Equal(t, `{"$numberInt":"1"}`+"\n"+`"two"`+"\n", ids)

	got := run(t, "store", "get", "--home", home, "--format", "json", `"two"`)
	require.Equal(t, `{"_id":"two","n":{"$numberLong":"5"}}`+"\n", got)

	listed := run(t, "store", "list", "--home", home, "--format", "json")
	require.Len(t, strings.Split(strings.TrimSpace(listed), "\n"), 2)

	require.Contains(t, run(t, "store", "delete", "--home", home, "1"), "deleted")
	require.Contains(t, run(t, "store", "reset", "--home", home), "(1 documents)")
}
