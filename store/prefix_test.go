package store

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestPrefixer(t *testing.T) {
	base := Prefixer("docs")

	tests := []struct {
		in  []byte
		out string
	}{
		{base("doc"), "docs/doc"},
		{base("doc", "ab"), "docs/doc/ab"},
		{base(), "docs"},
		{base(""), "docs/"},
		{Prefixer(string(base("doc")))("cd"), "docs/doc/cd"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.out, string(tt.in))
	}
}
