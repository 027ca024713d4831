package cmd

import (
	"bsonkit/cli"
	"bsonkit/extjson"
	"encoding/hex"
	"fmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var encodeOut string

var encodeCmd = &cobra.Command{
	Use:   "encode <file?>",
	Short: "Encodes JSON documents to BSON.",
	Long: `Reads whitespace-separated JSON or Extended JSON objects from a file or
stdin and writes them as concatenated BSON documents. Output is printed as
hex when stdout is a terminal.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := cli.ReadJSONInput(args)
		if err != nil {
			return err
		}
		docs, err := extjson.UnmarshalAll(input)
		if err != nil {
			return err
		}

		out, binary, err := cli.OpenBinaryOutput(encodeOut)
		if err != nil {
			return err
		}
		defer out.Close()
		for i, doc := range docs {
			b, err := codec.Encode(doc)
			if err != nil {
				return errors.Wrapf(err, "document %d", i)
			}
			if !binary {
				fmt.Fprintln(out, hex.EncodeToString(b))
				continue
			}
			if _, err := out.Write(b); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	encodeCmd.Flags().StringVar(&encodeOut, cli.FlagOut, "", "Write BSON to this file instead of stdout")
	rootCmd.AddCommand(encodeCmd)
}
