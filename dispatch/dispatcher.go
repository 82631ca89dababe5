// Package dispatch fans a notification message out to every subscriber in
// the subscriber document, one isolated send attempt per recipient.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gamedrops/droplist/email"
	"github.com/gamedrops/droplist/store"
	"github.com/google/uuid"
)

// MaxSubscribers caps how many recipients a single run will mail, matching
// the send volume the provider account is provisioned for.
const MaxSubscribers = 250

// SendFailure records one recipient whose send attempt did not succeed and
// the reason it failed.
type SendFailure struct {
	Recipient string `json:"recipient"`
	Reason    string `json:"reason"`
}

// BatchReport summarizes one dispatch run. Attempted always equals
// Succeeded plus the number of Failed entries.
type BatchReport struct {
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    []SendFailure `json:"failed"`
}

// Dispatcher mails one message to the subscriber list. It reads the list
// once per run and works from that snapshot, so subscription changes made
// while a run is in flight take effect on the next run.
//
// Each recipient gets exactly one send attempt. A failed attempt is
// recorded in the report and the run moves on; nothing a single recipient
// does can stop the rest of the batch.
type Dispatcher struct {
	Store           store.DocumentStore
	SubscribersPath string
	Mailer          email.Mailer
	Suppressor      email.Suppressor
	Throttle        email.Throttle
	UnsubscribeAddr string
	ApiBaseUrl      string
	MaxRecipients   int
	Log             *log.Logger
}

func NewDispatcher(
	docStore store.DocumentStore,
	subscribersPath string,
	mailer email.Mailer,
	suppressor email.Suppressor,
	throttle email.Throttle,
	unsubscribeAddr string,
	apiBaseUrl string,
	logger *log.Logger,
) *Dispatcher {
	return &Dispatcher{
		Store:           docStore,
		SubscribersPath: subscribersPath,
		Mailer:          mailer,
		Suppressor:      suppressor,
		Throttle:        throttle,
		UnsubscribeAddr: unsubscribeAddr,
		ApiBaseUrl:      apiBaseUrl,
		MaxRecipients:   MaxSubscribers,
		Log:             logger,
	}
}

// Dispatch sends msg to every subscriber and reports the outcome. A nil
// message or an empty subscriber list produces an empty report without
// touching the sender. Errors are returned only for failures that precede
// the fan-out; once sending starts, per-recipient failures land in the
// report and the run always completes.
func (d *Dispatcher) Dispatch(
	ctx context.Context, msg *email.Message,
) (report *BatchReport, err error) {
	report = &BatchReport{Failed: []SendFailure{}}

	if msg == nil {
		d.Log.Printf("nothing to send, skipping dispatch")
		return
	}

	recipients, err := d.subscriberSnapshot(ctx)
	if err != nil {
		report = nil
		return
	} else if len(recipients) == 0 {
		d.Log.Printf("no subscribers, skipping dispatch")
		return
	}

	template, err := email.ConvertToTemplate(msg)
	if err != nil {
		report = nil
		err = fmt.Errorf("failed to prepare message: %w", err)
		return
	}

	if err = d.Throttle.BulkCapacityAvailable(ctx, len(recipients)); err != nil {
		report = nil
		return
	}

	runId := uuid.NewString()
	d.Log.Printf(
		"dispatch %s: sending %q to %d recipients",
		runId, msg.Subject, len(recipients),
	)

	for _, recipient := range recipients {
		report.Attempted++

		if reason, ok := d.sendOne(ctx, template, recipient); ok {
			report.Succeeded++
		} else {
			report.Failed = append(
				report.Failed, SendFailure{Recipient: recipient, Reason: reason},
			)
		}
	}

	d.Log.Printf(
		"dispatch %s: attempted %d, succeeded %d, failed %d",
		runId, report.Attempted, report.Succeeded, len(report.Failed),
	)
	return
}

// subscriberSnapshot reads the subscriber document once. The list is
// already normalized and sorted; the recipient cap applies after sorting
// so an oversized list truncates deterministically.
func (d *Dispatcher) subscriberSnapshot(
	ctx context.Context,
) (recipients []string, err error) {
	doc, err := d.Store.Get(ctx, d.SubscribersPath)

	if errors.Is(err, store.ErrDocumentNotFound) {
		doc, err = &store.Document{}, nil
	} else if err != nil {
		err = fmt.Errorf("failed to read subscribers: %w", err)
		return
	}

	recipients = store.ParseSubscriberSet(doc.Body).Emails()

	if len(recipients) > d.MaxRecipients {
		d.Log.Printf(
			"limiting recipients to %d of %d", d.MaxRecipients, len(recipients),
		)
		recipients = recipients[:d.MaxRecipients]
	}
	return
}

// sendOne makes the single send attempt for one recipient. Any failure,
// including a failed suppression check, counts as that recipient's attempt.
func (d *Dispatcher) sendOne(
	ctx context.Context,
	template *email.MessageTemplate,
	recipient string,
) (failReason string, ok bool) {
	if suppressed, err := d.Suppressor.IsSuppressed(ctx, recipient); err != nil {
		failReason = err.Error()
		return
	} else if suppressed {
		d.Log.Printf("skipping suppressed address: %s", recipient)
		failReason = "suppressed"
		return
	}

	if err := d.Throttle.PauseBeforeNextSend(ctx); err != nil {
		failReason = err.Error()
		return
	}

	to := &email.Recipient{Email: recipient}
	if d.UnsubscribeAddr != "" {
		to.SetUnsubscribeInfo(d.UnsubscribeAddr, d.ApiBaseUrl)
	}

	buf := &bytes.Buffer{}
	if err := template.EmitMessage(buf, to); err != nil {
		failReason = err.Error()
		return
	}

	messageId, err := d.Mailer.Send(ctx, recipient, buf.Bytes())
	if err != nil {
		d.Log.Printf("send to %s failed: %s", recipient, err)
		failReason = err.Error()
		return
	}

	d.Log.Printf("sent %s to %s", messageId, recipient)
	ok = true
	return
}
