package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var methodsCmd = &cobra.Command{
	Use:   "methods <namespace>",
	Short: "List the methods an interface declares",
	Long: `List the methods an interface declares, with parameter lists and
result types read from the appliance's WSDL.

Examples:
  icontrolctl --host bigip1 methods LocalLB.Pool
  icontrolctl --host bigip1 methods System.SystemInfo -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runMethods,
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}

func runMethods(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	c, done, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	svc, err := c.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagOutput == outputJSON {
		type methodInfo struct {
			Name      string `json:"name"`
			Signature string `json:"signature"`
			Returns   string `json:"returns,omitempty"`
		}
		names := svc.Methods()
		infos := make([]methodInfo, 0, len(names))
		for _, name := range names {
			m, err := svc.Method(name)
			if err != nil {
				return err
			}
			infos = append(infos, methodInfo{Name: name, Signature: m.Signature(), Returns: m.Returns()})
		}
		return printJSON(cmd, infos)
	}

	t := newTable(cmd)
	t.AppendHeader(table.Row{"SIGNATURE", "RETURNS"})
	for _, name := range svc.Methods() {
		m, err := svc.Method(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{m.Signature(), m.Returns()})
	}
	t.Render()
	return nil
}
