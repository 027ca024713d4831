package store

import (
	"bsonkit/cli"
	docstore "bsonkit/store"
	"fmt"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Deletes a stored document.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := docstore.DeleteDocument(db, parseID(args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Document deleted.")
		return nil
	},
}

func init() {
	cmd.AddCommand(deleteCmd)
}
