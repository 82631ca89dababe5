package cmd

import (
	"context"
	"time"

	"github.com/gamedrops/droplist/store"
	"github.com/spf13/cobra"
)

const createDocumentsTableDescription = `` +
	`Creates a new DynamoDB table for versioned documents.

The table keys documents by path and stores a version attribute checked on
every conditional write, matching the contract of the GitHub-backed store.

The command takes one argument, the name of the table to create.`

func init() {
	rootCmd.AddCommand(newCreateDocumentsTableCmd(NewDynamoDb))
}

func newCreateDocumentsTableCmd(newDynDb DynamoDbFactoryFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "create-documents-table",
		Short: "Create a DynamoDB table for versioned documents",
		Long:  createDocumentsTableDescription,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sleep := func() { time.Sleep(time.Second) }
			return createDocumentsTable(cmd, newDynDb(args[0]), 60, sleep)
		},
	}
}

func createDocumentsTable(
	cmd *cobra.Command, db *store.DynamoDb, maxAttempts int, sleep func(),
) (err error) {
	cmd.SilenceUsage = true
	ctx := context.Background()

	if err = db.CreateTable(ctx); err != nil {
		return
	} else if err = db.WaitForTable(ctx, maxAttempts, sleep); err != nil {
		return
	}
	cmd.Printf("Successfully created DynamoDB table: %s\n", db.TableName)
	return
}
