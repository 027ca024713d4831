package cmd

import (
	"bsonkit/bson"
	"bsonkit/cli"
	"bsonkit/crypto"
	"encoding/json"
	"fmt"
	"github.com/spf13/cobra"
)

type hashJSON struct {
	Document int         `json:"document"`
	Digest   crypto.Hash `json:"digest"`
	Size     int         `json:"size"`
}

var hashCmd = &cobra.Command{
	Use:   "hash <file?>",
	Short: "Prints the BLAKE2b-256 digest of each re-encoded BSON document.",
	Long: `Decodes each document and hashes its re-encoding under the configured
codec, so documents that differ only in _id placement hash the same when
move_id_first is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		encoder := json.NewEncoder(cmd.OutOrStdout())
		return eachDocument(args, func(i int, doc *bson.Document) error {
			b, err := codec.Encode(doc)
			if err != nil {
				return err
			}
			digest := crypto.Blake2B256(b)
			if format == cli.FormatJSON {
				return encoder.Encode(&hashJSON{Document: i, Digest: digest, Size: len(b)})
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s  %d\n", digest, i)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(hashCmd)
}
