package cmd

import (
	"bsonkit/bson"
	"bsonkit/cli"
	"encoding/json"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file?>",
	Short: "Lists the top-level fields of BSON documents.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString(cli.FlagFormat)
		var fields []cli.FieldInfo
		err := eachDocument(args, func(i int, doc *bson.Document) error {
			docFields, err := cli.InspectDocument(i, doc)
			if err != nil {
				return err
			}
			fields = append(fields, docFields...)
			return nil
		})
		if err != nil {
			return err
		}

		if format == cli.FormatJSON {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			for _, f := range fields {
				if err := encoder.Encode(f); err != nil {
					return err
				}
			}
			return nil
		}
		cli.WriteFieldTable(cmd.OutOrStdout(), fields)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
