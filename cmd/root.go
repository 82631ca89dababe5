package cmd

import (
	"github.com/spf13/cobra"
)

const droplistDesc = "Mailing list system for free game drop notifications"
const droplistDescLong = droplistDesc + "\n\n" +
	`Subscribers live in a versioned subscribers document; free game offers live
in a drops document written by the scraper pipeline. The deployed Lambda
updates subscriptions through the public API and mails digests on a schedule.

To subscribe or unsubscribe an address directly, bypassing the public API:
  droplist apply subscribe someone@example.com -s STACK_NAME

To trigger a notification run:
  droplist dispatch --kind recap -s STACK_NAME

To preview the digest for a drops document without sending anything:
  droplist preview < drops.json

To run the subscription API as a plain HTTP server:
  droplist serve --config config.yaml
`

var rootCmd = &cobra.Command{
	Use:     "droplist",
	Version: "v0.1.0",
	Short:   droplistDesc,
	Long:    droplistDescLong,
}

func Execute() error {
	return rootCmd.Execute()
}
