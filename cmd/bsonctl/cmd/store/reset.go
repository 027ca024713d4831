package store

import (
	"bsonkit/cli"
	docstore "bsonkit/store"
	"fmt"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Wipes the document store directly on disk.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		count, err := docstore.TruncateDocuments(db)
		if err != nil {
			db.Close()
			return errors.Wrap(err, "error truncating document store")
		}
		if err := db.Close(); err != nil {
			return errors.Wrap(err, "error closing DB")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Document store wiped (%d documents).\n", count)
		return nil
	},
}

func init() {
	cmd.AddCommand(resetCmd)
}
