package config

import (
	"github.com/mitchellh/go-homedir"
	"os"
	"path"
)

const (
	DefaultHomePath = "~/.bsonctl"
	DBPath          = "db"
)

func ExpandHomePath(path string) string {
	res, err := homedir.Expand(path)
	if err != nil {
		panic(err)
	}
	return res
}

func ExpandDBPath(homePath string) string {
	return path.Join(homePath, DBPath)
}

func InitDBDir(homePath string) error {
	return os.MkdirAll(ExpandDBPath(homePath), 0700)
}
