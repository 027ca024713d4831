package config

import (
	"bsonkit/bson"
	"bsonkit/log"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"io"
)

type Config struct {
	LogLevel  string      `mapstructure:"log_level"`
	LogFormat string      `mapstructure:"log_format"`
	Codec     CodecConfig `mapstructure:"codec"`
	Store     StoreConfig `mapstructure:"store"`
}

type CodecConfig struct {
	ValidateKeys         bool `mapstructure:"validate_keys"`
	MoveIDFirst          bool `mapstructure:"move_id_first"`
	MaxDocumentSizeBytes int  `mapstructure:"max_document_size_bytes"`
}

type StoreConfig struct {
	Workers int `mapstructure:"workers"`
}

// Codec builds the codec policy described by the [codec] table.
func (c CodecConfig) Codec() *bson.Codec {
	return &bson.Codec{
		ValidateKeys:    c.ValidateKeys,
		MoveIDFirst:     c.MoveIDFirst,
		MaxDocumentSize: c.MaxDocumentSizeBytes,
	}
}

func (c *Config) Validate() error {
	if _, err := log.NewLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return errors.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.Codec.MaxDocumentSizeBytes < 0 {
		return errors.New("max_document_size_bytes must not be negative")
	}
	if c.Store.Workers < 1 {
		return errors.New("store workers must be at least 1")
	}
	return nil
}

func ReadConfig(r io.Reader) (*Config, error) {
	decoder := toml.NewDecoder(r)
	decoder.SetTagName("mapstructure")
	config := &Config{}
	if err := decoder.Decode(config); err != nil {
		return nil, errors.Wrap(err, "error decoding config file")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return config, nil
}
