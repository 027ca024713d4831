package cli

import (
	"bsonkit/bson"
	"bsonkit/config"
	"github.com/spf13/cobra"
)

// AddCodecFlags registers the flags that override the [codec] config table.
func AddCodecFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(FlagValidateKeys, false, "Reject keys that start with $ or contain a dot")
	cmd.PersistentFlags().Bool(FlagMoveIDFirst, false, "Write the top-level _id field first")
	cmd.PersistentFlags().Int(FlagMaxSize, 0, "Maximum encoded document size in bytes (0 disables the check)")
}

// GetCodec builds a codec from cfg, applying any codec flag the user set
// explicitly.
func GetCodec(cmd *cobra.Command, cfg *config.Config) *bson.Codec {
	codec := cfg.Codec.Codec()
	flags := cmd.Flags()
	if flags.Changed(FlagValidateKeys) {
		codec.ValidateKeys, _ = flags.GetBool(FlagValidateKeys)
	}
	if flags.Changed(FlagMoveIDFirst) {
		codec.MoveIDFirst, _ = flags.GetBool(FlagMoveIDFirst)
	}
	if flags.Changed(FlagMaxSize) {
		codec.MaxDocumentSize, _ = flags.GetInt(FlagMaxSize)
	}
	return codec
}
