// Package cmd implements the command-line interface for tubeplay.
package cmd

import (
	"encoding/json"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/tubeplay-cli/tubeplay/source"
)

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().BoolP("source", "s", false, "Generate the schema of the source descriptor consumed by run")
	schemaCmd.Flags().BoolP("summary", "m", false, "Generate the schema of the session summary emitted by run --json")
	schemaCmd.MarkFlagsMutuallyExclusive("source", "summary")
}

// schemaCmd generates JSON schemas for the structured inputs and outputs of
// the run command.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for structured run inputs and outputs",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true

		var schema *jsonschema.Schema

		switch {
		case lo.Must(cmd.Flags().GetBool("source")):
			schema = reflector.Reflect(&source.Source{})
		default:
			schema = reflector.Reflect(&runSummary{})
		}

		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
