package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gamedrops/droplist/dispatch"
	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/email"
	"github.com/gamedrops/droplist/handler"
	"github.com/gamedrops/droplist/registry"
	"github.com/gamedrops/droplist/store"
	"github.com/gamedrops/droplist/types"
)

// bulkSendCapacity reserves a slice of the daily quota for the verification
// and transactional mail the account sends outside dispatch runs.
const bulkSendCapacity = 0.8

const quotaRefreshInterval = 5 * time.Minute

func buildHandler() (h *handler.Handler, err error) {
	ctx := context.Background()
	var cfg aws.Config
	var opts *handler.Options

	if cfg, err = config.LoadDefaultConfig(ctx); err != nil {
		return
	} else if opts, err = handler.GetOptions(os.Getenv); err != nil {
		return
	}

	logger := log.Default()
	docStore := store.NewGitHubStore(
		opts.RepoOwner, opts.RepoName, opts.GitHubToken,
	)
	updater := registry.NewUpdater(docStore, opts.SubscribersPath, logger)

	maxCap, err := types.NewCapacity(bulkSendCapacity)
	if err != nil {
		return
	}

	sesV2Client := sesv2.NewFromConfig(cfg)
	var throttle *email.SesThrottle
	throttle, err = email.NewSesThrottle(
		ctx, sesV2Client, maxCap, time.Sleep, time.Now, quotaRefreshInterval,
	)
	if err != nil {
		return
	}

	dispatcher := dispatch.NewDispatcher(
		docStore,
		opts.SubscribersPath,
		&email.SesMailer{
			Client:    ses.NewFromConfig(cfg),
			ConfigSet: opts.ConfigurationSet,
		},
		&email.SesSuppressor{Client: sesV2Client},
		throttle,
		opts.UnsubscribeEmail,
		opts.ApiBaseUrl,
		logger,
	)
	dispatcher.MaxRecipients = opts.MaxRecipients

	notifier := &dispatch.Notifier{
		Store:     docStore,
		DropsPath: opts.DropsPath,
		Renderer: &drops.Renderer{
			Sender:        opts.SenderAddress,
			Subject:       opts.EmailSubject,
			DashboardLink: opts.DashboardLink,
		},
		Dispatcher: dispatcher,
		Log:        logger,
	}

	h = handler.NewHandler(updater, notifier, logger)
	return
}

func main() {
	// The Lambda runtime already timestamps every log line.
	log.SetFlags(0)

	if h, err := buildHandler(); err != nil {
		log.Fatalf("Failed to initialize process: %s", err.Error())
	} else {
		lambda.Start(h.HandleEvent)
	}
}
