package cmd

import (
	"bsonkit/bson"
	"bsonkit/cli"
	"bsonkit/cmd/bsonctl/cmd/store"
	"bsonkit/config"
	"bsonkit/log"
	"fmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"os"
)

var (
	cfg   *config.Config
	codec *bson.Codec
)

var rootCmd = &cobra.Command{
	Use:           "bsonctl",
	Short:         "Encode, decode, inspect and store BSON documents.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.CalledAs() == "init" {
			cfg = &config.DefaultConfig
			return nil
		}
		var err error
		cfg, err = cli.LoadConfig(cmd)
		if err != nil {
			return errors.Wrap(err, "error loading config")
		}
		logLevel, err := log.NewLevel(cfg.LogLevel)
		if err != nil {
			return errors.Wrap(err, "error parsing log level")
		}
		log.SetLevel(logLevel)
		log.SetJSON(cfg.LogFormat == cli.FormatJSON)
		codec = cli.GetCodec(cmd, cfg)
		store.Configure(cfg, codec)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String(cli.FlagHome, config.DefaultHomePath, "Home directory for bsonctl's config and database.")
	rootCmd.PersistentFlags().String(cli.FlagFormat, cli.FormatText, "Output format (text or json)")
	cli.AddCodecFlags(rootCmd)
	store.AddCmd(rootCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
