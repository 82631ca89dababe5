package cmd

import (
	"context"

	"github.com/gamedrops/droplist/email"
	"github.com/gamedrops/droplist/registry"
	"github.com/spf13/cobra"
)

const suppressDescription = `` +
	`Adds an email address to the SES account-level suppression list.

Dispatch runs skip suppressed addresses instead of sending to mailboxes
known to bounce or complain. Use this to stop mailing an address that is
hurting sender reputation without unsubscribing it.

The command takes one argument, the email address to suppress.`

const unsuppressDescription = `` +
	`Removes an email address from the SES account-level suppression list.

Use this when an address landed on the suppression list by mistake, or its
mailbox problem is confirmed fixed, so dispatch runs resume sending to it.

The command takes one argument, the email address to unsuppress.`

func init() {
	rootCmd.AddCommand(newSuppressCmd(NewSesSuppressor))
	rootCmd.AddCommand(newUnsuppressCmd(NewSesSuppressor))
}

func newSuppressCmd(newSuppressor SuppressorFactoryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "suppress",
		Short: "Add an email address to the SES suppression list",
		Long:  suppressDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSuppressionList(
				cmd, newSuppressor(), args[0], "Suppressed",
				email.Suppressor.Suppress,
			)
		},
	}
}

func newUnsuppressCmd(newSuppressor SuppressorFactoryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "unsuppress",
		Short: "Remove an email address from the SES suppression list",
		Long:  unsuppressDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSuppressionList(
				cmd, newSuppressor(), args[0], "Unsuppressed",
				email.Suppressor.Unsuppress,
			)
		},
	}
}

func updateSuppressionList(
	cmd *cobra.Command,
	suppressor email.Suppressor,
	address string,
	didUpdate string,
	update func(email.Suppressor, context.Context, string) error,
) (err error) {
	cmd.SilenceUsage = true

	if address, err = registry.ValidateAddress(address); err != nil {
		return
	} else if err = update(suppressor, context.Background(), address); err != nil {
		return
	}
	cmd.Printf("%s %s\n", didUpdate, address)
	return
}
