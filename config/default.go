package config

import (
	"bsonkit/bson"
	"bsonkit/log"
	"bytes"
	"github.com/pkg/errors"
	"io"
	"os"
	"path"
	"text/template"
)

const ConfigFile = "config.toml"

var DefaultConfig = Config{
	LogLevel:  log.LevelInfo.String(),
	LogFormat: "text",
	Codec: CodecConfig{
		ValidateKeys:         false,
		MoveIDFirst:          true,
		MaxDocumentSizeBytes: bson.DefaultMaxDocumentSize,
	},
	Store: StoreConfig{
		Workers: 4,
	},
}

const defaultConfigTemplateText = `# bsonctl Config File

# Sets the log level. Can be one of the following values:
# - error
# - warn
# - info
# - debug
# - trace
log_level = "{{.LogLevel}}"

# Sets the log format. Either "text" or "json". Logs are
# always written to stderr.
log_format = "{{.LogFormat}}"

# Configures how documents are encoded and decoded.
[codec]
  # Sets the largest encoded document, in bytes, the codec will
  # produce or accept. Set to 0 to disable the check.
  max_document_size_bytes = {{.Codec.MaxDocumentSizeBytes}}
  # Writes the top-level _id field first when encoding.
  move_id_first = {{.Codec.MoveIDFirst}}
  # Rejects keys that start with $ or contain a dot when encoding.
  validate_keys = {{.Codec.ValidateKeys}}

# Configures the local document store.
[store]
  # Sets how many documents are encoded concurrently during
  # batch inserts.
  workers = {{.Store.Workers}}
`

var defaultConfigTemplate *template.Template

func GenerateDefaultConfigFile() []byte {
	buf := new(bytes.Buffer)
	if err := defaultConfigTemplate.Execute(buf, DefaultConfig); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func ReadConfigFile(homeDir string) (*Config, error) {
	f, err := os.OpenFile(path.Join(homeDir, ConfigFile), os.O_RDONLY, 0755)
	if err != nil {
		return nil, errors.Wrap(err, "error opening config file for reading")
	}
	defer f.Close()
	cfg, err := ReadConfig(f)
	if err != nil {
		return nil, errors.Wrap(err, "error reading config file")
	}
	return cfg, nil
}

func WriteDefaultConfigFile(homeDir string) error {
	f, err := os.OpenFile(path.Join(homeDir, ConfigFile), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "error opening config file for writing")
	}
	defer f.Close()
	rd := bytes.NewReader(GenerateDefaultConfigFile())
	if _, err := io.Copy(f, rd); err != nil {
		return errors.Wrap(err, "error writing config file")
	}
	return nil
}

func init() {
	tmpl := template.New("defaultConfig")
	t, err := tmpl.Parse(defaultConfigTemplateText)
	if err != nil {
		panic(err)
	}
	defaultConfigTemplate = t
}
