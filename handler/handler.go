package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/gamedrops/droplist/dispatch"
	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/events"
	"github.com/gamedrops/droplist/registry"
)

// NotificationAgent runs one notification pass. dispatch.Notifier is the
// production implementation.
type NotificationAgent interface {
	Notify(ctx context.Context, kind drops.Kind) (*dispatch.BatchReport, error)
}

// Handler demultiplexes the Lambda event types the function receives: API
// Gateway requests for subscription changes, scheduled events for
// notification runs, and direct invocations from the command line.
type Handler struct {
	api       *apiHandler
	cli       *cliHandler
	scheduled *scheduledHandler
}

func NewHandler(
	agent SubscriptionAgent,
	notifier NotificationAgent,
	logger *log.Logger,
) *Handler {
	return &Handler{
		api:       &apiHandler{Agent: agent, Log: logger},
		cli:       &cliHandler{Agent: agent, Notifier: notifier, Log: logger},
		scheduled: &scheduledHandler{Notifier: notifier, Log: logger},
	}
}

func (h *Handler) HandleEvent(
	ctx context.Context, event Event,
) (result any, err error) {
	switch event.Type {
	case ApiRequest:
		result = h.api.HandleApiRequest(ctx, &event.ApiRequest)
	case ScheduledEvent:
		result, err = h.scheduled.HandleEvent(ctx, &event.ScheduledEvent)
	case CommandLineEvent:
		result, err = h.cli.HandleEvent(ctx, &event.CommandLineEvent)
	default:
		err = fmt.Errorf("unexpected event type: %s", event.Type)
	}
	return
}

// scheduledHandler runs the notification pass requested by an EventBridge
// schedule. The schedule's detail payload selects the run kind; a missing
// or unknown kind runs an alert.
type scheduledHandler struct {
	Notifier NotificationAgent
	Log      *log.Logger
}

type scheduledDetail struct {
	Kind string `json:"kind"`
}

func (h *scheduledHandler) HandleEvent(
	ctx context.Context, e *awsevents.CloudWatchEvent,
) (*dispatch.BatchReport, error) {
	detail := &scheduledDetail{}
	if len(e.Detail) != 0 {
		if err := json.Unmarshal(e.Detail, detail); err != nil {
			h.Log.Printf("ignoring malformed schedule detail: %s", err)
		}
	}

	kind := drops.KindAlert
	if detail.Kind == string(drops.KindRecap) {
		kind = drops.KindRecap
	}
	return h.Notifier.Notify(ctx, kind)
}

type cliHandler struct {
	Agent    SubscriptionAgent
	Notifier NotificationAgent
	Log      *log.Logger
}

func (h *cliHandler) HandleEvent(
	ctx context.Context, e *events.CommandLineEvent,
) (res any, err error) {
	switch e.DroplistCommand {
	case events.CommandLineApplyEvent:
		res = h.HandleApplyEvent(ctx, e.Apply)
	case events.CommandLineDispatchEvent:
		res = h.HandleDispatchEvent(ctx, e.Dispatch)
	default:
		err = fmt.Errorf("unknown droplist command: %s", e.DroplistCommand)
	}
	return
}

func (h *cliHandler) HandleApplyEvent(
	ctx context.Context, e *events.ApplyEvent,
) (res *events.ApplyResponse) {
	res = &events.ApplyResponse{}
	result, err := h.Agent.Apply(ctx, e.Email, registry.Action(e.Action))

	if err != nil {
		res.Details = err.Error()
	} else {
		res.Success = true
	}
	res.Result = result.String()

	h.Log.Printf(
		"apply: %s %s; success: %t", e.Action, e.Email, res.Success,
	)
	return
}

func (h *cliHandler) HandleDispatchEvent(
	ctx context.Context, e *events.DispatchEvent,
) (res *events.DispatchResponse) {
	res = &events.DispatchResponse{}
	report, err := h.Notifier.Notify(ctx, drops.Kind(e.Kind))

	if err != nil {
		res.Details = err.Error()
	} else {
		res.Success = true
		res.Report = report
	}

	h.Log.Printf("dispatch: %s run; success: %t", e.Kind, res.Success)
	return
}
