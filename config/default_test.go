package config

import (
	"bsonkit/testutil/testfs"
	"bytes"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"path"
	"strings"
	"testing"
)

func TestGenerateDefaultConfigFile(t *testing.T) {
	generatedCfg := GenerateDefaultConfigFile()
	cfg, err := ReadConfig(bytes.NewReader(generatedCfg))
	require.NoError(t, err)
	require.EqualValues(t, DefaultConfig, *cfg)
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bad level", `log_level = "loud"` + "\nlog_format = \"text\"\n[store]\nworkers = 1\n"},
		{"bad format", `log_level = "info"` + "\nlog_format = \"xml\"\n[store]\nworkers = 1\n"},
		{"no workers", `log_level = "info"` + "\nlog_format = \"text\"\n[store]\nworkers = 0\n"},
		{"negative size", `log_level = "info"` + "\nlog_format = \"text\"\n[codec]\nmax_document_size_bytes = -1\n[store]\nworkers = 1\n"},
		{"not toml", "log_level = \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadConfig(strings.NewReader(tt.text))
			require.Error(t, err)
		})
	}
}

func TestCodecConfig_Codec(t *testing.T) {
	c := DefaultConfig.Codec.Codec()
	require.False(t, c.ValidateKeys)
	require.True(t, c.MoveIDFirst)
	require.Equal(t, 16*1024*1024, c.MaxDocumentSize)
}

func TestInitHomeDir(t *testing.T) {
	dir, done := testfs.NewTempDir(t)
	defer done()
	home := path.Join(dir, "home")

	require.Error(t, EnsureHomeDir(home))
	require.NoError(t, InitHomeDir(home))
	require.NoError(t, EnsureHomeDir(home))

	stat, err := os.Stat(ExpandDBPath(home))
	require.NoError(t, err)
	require.True(t, stat.IsDir())

	cfg, err := ReadConfigFile(home)
	require.NoError(t, err)
	require.EqualValues(t, DefaultConfig, *cfg)

	file := path.Join(dir, "file")
	require.NoError(t, ioutil.WriteFile(file, nil, 0644))
	_, err = HomeDirExists(file)
	require.Error(t, err)
}
