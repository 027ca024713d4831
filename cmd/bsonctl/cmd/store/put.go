package store

import (
	"bsonkit/cli"
	"bsonkit/extjson"
	docstore "bsonkit/store"
	"context"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"os"
	"os/signal"
)

var putCmd = &cobra.Command{
	Use:   "put <file?>",
	Short: "Stores JSON documents, generating an _id for documents without one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := cli.ReadJSONInput(args)
		if err != nil {
			return err
		}
		docs, err := extjson.UnmarshalAll(input)
		if err != nil {
			return err
		}

		db, err := cli.OpenStore(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ids, err := docstore.PutDocuments(ctx, db, codec, docs, cfg.Store.Workers)
		if err != nil {
			return errors.Wrap(err, "error storing documents")
		}
		for _, id := range ids {
			if err := cli.WriteValue(cmd.OutOrStdout(), id, cli.FormatJSON); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	cmd.AddCommand(putCmd)
}
