package cmd

import (
	"bsonkit/bson"
	"bsonkit/cli"
	"github.com/spf13/cobra"
	"io"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <file?>",
	Short: "Decodes a stream of BSON documents to Extended JSON.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		return eachDocument(args, func(i int, doc *bson.Document) error {
			return cli.WriteDocument(cmd.OutOrStdout(), doc, format)
		})
	},
}

// eachDocument decodes length-prefixed documents from the input until it is
// exhausted.
func eachDocument(args []string, cb func(int, *bson.Document) error) error {
	in, err := cli.OpenBinaryInput(args)
	if err != nil {
		return err
	}
	defer in.Close()
	for i := 0; ; i++ {
		doc, err := codec.ReadDocument(in)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := cb(i, doc); err != nil {
			return err
		}
	}
}

func init() {
	rootCmd.AddCommand(decodeCmd)
}
