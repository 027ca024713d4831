package store

import (
	"bsonkit/bson"
	"bsonkit/config"
	"bsonkit/extjson"
	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	codec *bson.Codec
)

var cmd = &cobra.Command{
	Use:   "store",
	Short: "Commands for the local document store.",
}

func AddCmd(parent *cobra.Command) {
	parent.AddCommand(cmd)
}

// Configure receives the config and codec resolved by the root command.
func Configure(c *config.Config, cd *bson.Codec) {
	cfg = c
	codec = cd
}

// parseID accepts an _id as Extended JSON ('"name"', '7',
// '{"$oid":"..."}'), a bare ObjectID hex string, or any other bare string.
func parseID(arg string) interface{} {
	if v, err := extjson.UnmarshalValue([]byte(arg)); err == nil {
		return v
	}
	if id, err := bson.ObjectIDFromHex(arg); err == nil {
		return id
	}
	return arg
}
