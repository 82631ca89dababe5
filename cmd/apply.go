package cmd

import (
	"context"
	"fmt"

	"github.com/gamedrops/droplist/events"
	"github.com/spf13/cobra"
)

const applyDescription = `` +
	`Applies one subscription change directly through the deployed Lambda,
bypassing the public API. Useful for manual imports and removals.

The first argument is the action, "subscribe" or "unsubscribe"; the second is
the email address. The Lambda to invoke is resolved from the --stack-name
flag, or may be given explicitly as a third ARN argument.`

func init() {
	rootCmd.AddCommand(newApplyCmd(NewLambdaClient, NewCloudFormationClient))
}

func newApplyCmd(
	newClient LambdaClientFactoryFunc,
	newCfClient CloudFormationClientFactoryFunc,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <action> <email> [lambda-arn]",
		Short: "Subscribe or unsubscribe an address via the deployed Lambda",
		Long:  applyDescription,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applySubscription(cmd, newClient(), newCfClient(), args)
		},
	}
	registerStackName(cmd)
	return cmd
}

func applySubscription(
	cmd *cobra.Command,
	client LambdaClient,
	cfc CloudFormationClient,
	args []string,
) (err error) {
	cmd.SilenceUsage = true
	ctx := context.Background()
	action, email := args[0], args[1]

	arn, err := resolveFunctionArn(ctx, cfc, getStackName(cmd), args[2:])
	if err != nil {
		return
	}

	event := &events.CommandLineEvent{
		DroplistCommand: events.CommandLineApplyEvent,
		Apply:           &events.ApplyEvent{Email: email, Action: action},
	}
	response := &events.ApplyResponse{}

	if err = invokeLambda(ctx, client, arn, event, response); err != nil {
		return
	} else if !response.Success {
		return fmt.Errorf(
			"failed to %s %s: %s", action, email, response.Details,
		)
	}
	cmd.Printf("%s: %s\n", response.Result, email)
	return
}
