package store

import (
	"bsonkit/cli"
	docstore "bsonkit/store"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Prints a stored document.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		doc, err := docstore.GetDocument(db, codec, parseID(args[0]))
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		return cli.WriteDocument(cmd.OutOrStdout(), doc, format)
	},
}

func init() {
	cmd.AddCommand(getCmd)
}
