package cmd

import (
	"context"
	"fmt"

	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/events"
	"github.com/spf13/cobra"
)

const dispatchDescription = `` +
	`Triggers one notification run through the deployed Lambda.

An "alert" run announces only newly listed offers; a "recap" run covers
everything still claimable, including offers about to end. The Lambda to
invoke is resolved from the --stack-name flag, or may be given explicitly as
an ARN argument.`

func init() {
	rootCmd.AddCommand(newDispatchCmd(NewLambdaClient, NewCloudFormationClient))
}

func newDispatchCmd(
	newClient LambdaClientFactoryFunc,
	newCfClient CloudFormationClientFactoryFunc,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch [lambda-arn]",
		Short: "Trigger a notification run via the deployed Lambda",
		Long:  dispatchDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return dispatchRun(cmd, newClient(), newCfClient(), args)
		},
	}
	registerStackName(cmd)
	cmd.Flags().StringP(
		FlagKind, "k", string(drops.KindAlert),
		`notification run kind, "alert" or "recap"`,
	)
	return cmd
}

func dispatchRun(
	cmd *cobra.Command,
	client LambdaClient,
	cfc CloudFormationClient,
	args []string,
) (err error) {
	cmd.SilenceUsage = true
	ctx := context.Background()
	kind := getStringFlag(cmd, FlagKind)

	if kind != string(drops.KindAlert) && kind != string(drops.KindRecap) {
		return fmt.Errorf("invalid run kind: %s", kind)
	}

	arn, err := resolveFunctionArn(ctx, cfc, getStackName(cmd), args)
	if err != nil {
		return
	}

	event := &events.CommandLineEvent{
		DroplistCommand: events.CommandLineDispatchEvent,
		Dispatch:        &events.DispatchEvent{Kind: kind},
	}
	response := &events.DispatchResponse{}

	if err = invokeLambda(ctx, client, arn, event, response); err != nil {
		return
	} else if !response.Success {
		return fmt.Errorf("%s run failed: %s", kind, response.Details)
	}

	report := response.Report
	cmd.Printf(
		"%s run complete: attempted %d, succeeded %d, failed %d\n",
		kind, report.Attempted, report.Succeeded, len(report.Failed),
	)
	for _, failure := range report.Failed {
		cmd.Printf("  %s: %s\n", failure.Recipient, failure.Reason)
	}
	return
}
