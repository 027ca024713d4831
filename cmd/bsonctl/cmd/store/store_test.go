package store

import (
	"bsonkit/bson"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseID(t *testing.T) {
	oid, err := bson.ObjectIDFromHex("5f0c1a2b3c4d5e6f70819203")
	require.NoError(t, err)

	require.Equal(t, int32(7), parseID("7"))
	require.Equal(t, int64(1)<<40, parseID("1099511627776"))
	require.Equal(t, "name", parseID(`"name"`))
	require.Equal(t, oid, parseID(`{"$oid":"5f0c1a2b3c4d5e6f70819203"}`))
	require.Equal(t, oid, parseID("5f0c1a2b3c4d5e6f70819203"))
	require.Equal(t, "plain-name", parseID("plain-name"))
}
