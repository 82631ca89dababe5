package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/events"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

const scheduleDescription = `` +
	`Runs an in-process scheduler that triggers notification runs through the
deployed Lambda on cron schedules, for deployments without EventBridge.

By default it runs an alert every six hours and a recap every Friday evening.
The process runs until interrupted.`

var scheduleFlags = struct {
	alertSpec string
	recapSpec string
}{}

func init() {
	rootCmd.AddCommand(newScheduleCmd(NewLambdaClient, NewCloudFormationClient))
}

func newScheduleCmd(
	newClient LambdaClientFactoryFunc,
	newCfClient CloudFormationClientFactoryFunc,
) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule [lambda-arn]",
		Short: "Trigger notification runs on cron schedules",
		Long:  scheduleDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduler(cmd, newClient(), newCfClient(), args)
		},
	}
	registerStackName(cmd)
	cmd.Flags().StringVar(
		&scheduleFlags.alertSpec, "alert-spec", "0 */6 * * *",
		"cron schedule for alert runs",
	)
	cmd.Flags().StringVar(
		&scheduleFlags.recapSpec, "recap-spec", "0 18 * * FRI",
		"cron schedule for recap runs",
	)
	return cmd
}

func runScheduler(
	cmd *cobra.Command,
	client LambdaClient,
	cfc CloudFormationClient,
	args []string,
) (err error) {
	cmd.SilenceUsage = true
	ctx := context.Background()
	logger := log.Default()

	arn, err := resolveFunctionArn(ctx, cfc, getStackName(cmd), args)
	if err != nil {
		return
	}

	scheduler := cron.New()
	addRun := func(spec string, kind drops.Kind) error {
		_, addErr := scheduler.AddFunc(spec, func() {
			dispatchScheduledRun(client, arn, kind, logger)
		})
		if addErr != nil {
			return fmt.Errorf(
				"invalid %s schedule %q: %s", kind, spec, addErr,
			)
		}
		return nil
	}

	if err = addRun(scheduleFlags.alertSpec, drops.KindAlert); err != nil {
		return
	} else if err = addRun(scheduleFlags.recapSpec, drops.KindRecap); err != nil {
		return
	}

	logger.Printf(
		"scheduling alert runs at %q and recap runs at %q",
		scheduleFlags.alertSpec, scheduleFlags.recapSpec,
	)
	scheduler.Start()
	defer scheduler.Stop()

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, os.Interrupt, syscall.SIGTERM)
	<-interrupted
	logger.Printf("shutting down scheduler")
	return
}

func dispatchScheduledRun(
	client LambdaClient, arn string, kind drops.Kind, logger *log.Logger,
) {
	event := &events.CommandLineEvent{
		DroplistCommand: events.CommandLineDispatchEvent,
		Dispatch:        &events.DispatchEvent{Kind: string(kind)},
	}
	response := &events.DispatchResponse{}
	err := invokeLambda(context.Background(), client, arn, event, response)

	if err != nil {
		logger.Printf("%s run failed: %s", kind, err)
	} else if !response.Success {
		logger.Printf("%s run failed: %s", kind, response.Details)
	} else {
		report := response.Report
		logger.Printf(
			"%s run complete: attempted %d, succeeded %d, failed %d",
			kind, report.Attempted, report.Succeeded, len(report.Failed),
		)
	}
}
