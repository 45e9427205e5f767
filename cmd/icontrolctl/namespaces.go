package main

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var namespacesCmd = &cobra.Command{
	Use:   "namespaces",
	Short: "List the namespaces the appliance exposes",
	Long: `List the iControl namespaces the appliance advertises on its portal
index, grouped by module. The set varies with platform version and
provisioned features, so it is read from the appliance rather than
assumed.

Examples:
  icontrolctl --host bigip1 namespaces
  icontrolctl --host bigip1 namespaces -o json`,
	Args: cobra.NoArgs,
	RunE: runNamespaces,
}

func init() {
	rootCmd.AddCommand(namespacesCmd)
}

func runNamespaces(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	c, done, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	groups, err := c.Namespaces(cmd.Context())
	if err != nil {
		return err
	}
	if flagOutput == outputJSON {
		return printJSON(cmd, groups)
	}

	modules, err := c.Modules(cmd.Context())
	if err != nil {
		return err
	}
	t := newTable(cmd)
	t.AppendHeader(table.Row{"MODULE", "INTERFACES"})
	for _, mod := range modules {
		t.AppendRow(table.Row{mod, strings.Join(groups[mod], ", ")})
	}
	t.Render()
	return nil
}
