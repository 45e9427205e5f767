package main

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// checkOutput rejects --output values no command understands.
func checkOutput() error {
	switch flagOutput {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q, valid values: table, json", flagOutput)
	}
}

// newTable creates a table writer in the house style, rendering to the
// command's stdout.
func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	return t
}

// printJSON writes v as indented JSON to the command's stdout.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
