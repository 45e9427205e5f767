package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Open a session and print its identifier",
	Long: `Open a server-side session and print its identifier. Sessions scope
transactions and the active folder; later invocations join the session
by passing the identifier with --session-id.

A transaction can then span several invocations:

  ID=$(icontrolctl --host bigip1 session)
  icontrolctl --host bigip1 --session-id "$ID" call System.Session start_transaction
  icontrolctl --host bigip1 --session-id "$ID" call LocalLB.Pool set_description web_pool standby
  icontrolctl --host bigip1 --session-id "$ID" call System.Session submit_transaction

Requires an appliance running 11.0 or newer.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	c, done, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer done()

	sess, err := c.NewSession(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), sess.SessionID())
	return nil
}
