package store

import (
	"bsonkit/cli"
	docstore "bsonkit/store"
	"github.com/spf13/cobra"
	"math"
	"strconv"
)

var listCmd = &cobra.Command{
	Use:   "list <limit?>",
	Short: "Lists stored documents.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lim := math.MaxInt64
		if len(args) == 1 {
			limit, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return err
			}
			lim = int(limit)
		}

		db, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		stream, err := docstore.StreamDocuments(db, codec)
		if err != nil {
			return err
		}
		defer stream.Close()
		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		for count := 0; count < lim; count++ {
			doc, err := stream.Next()
			if err != nil {
				return err
			}
			if doc == nil {
				break
			}
			if err := cli.WriteDocument(cmd.OutOrStdout(), doc, format); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	cmd.AddCommand(listCmd)
}
