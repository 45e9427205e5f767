package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <namespace>",
	Short: "Show an interface's methods with their documentation",
	Long: `Show every method an interface declares together with the
documentation text the appliance ships in its WSDL.

Example:
  icontrolctl --host bigip1 describe LocalLB.Pool`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	c, done, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	svc, err := c.Resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), svc.Describe())
	return nil
}
