//go:build small_tests || all_tests

package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gamedrops/droplist/email"
	"github.com/gamedrops/droplist/testdoubles"
	"github.com/gamedrops/droplist/testutils"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

const subscribersPath = "subscribers.json"

type dispatcherFixture struct {
	dispatcher *Dispatcher
	store      *testdoubles.DocumentStore
	mailer     *testdoubles.Mailer
	suppressor *testdoubles.Suppressor
	throttle   *testdoubles.Throttle
	logs       *testutils.Logs
}

func newDispatcherFixture() *dispatcherFixture {
	f := &dispatcherFixture{
		store:      testdoubles.NewDocumentStore(),
		mailer:     testdoubles.NewMailer(),
		suppressor: testdoubles.NewSuppressor(),
		throttle:   testdoubles.NewThrottle(),
	}

	logs, logger := testutils.NewLogs()
	f.logs = logs

	f.dispatcher = NewDispatcher(
		f.store,
		subscribersPath,
		f.mailer,
		f.suppressor,
		f.throttle,
		"unsubscribe@example.com",
		"https://example.com/api/subscribe",
		logger,
	)
	return f
}

func (f *dispatcherFixture) setSubscribers(emails ...string) {
	body := `{"emails": ["` + strings.Join(emails, `", "`) + `"]}`
	f.store.SetDocument(subscribersPath, []byte(body))
}

func TestDispatchSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("NilMessageWithoutReadingSubscribers", func(t *testing.T) {
		f := newDispatcherFixture()

		report, err := f.dispatcher.Dispatch(ctx, nil)

		assert.NilError(t, err)
		assert.Equal(t, 0, report.Attempted)
		assert.Equal(t, 0, f.store.GetCalls)
		assert.Assert(t, is.Len(f.mailer.SendOrder, 0))
	})

	t.Run("EmptySubscriberSet", func(t *testing.T) {
		f := newDispatcherFixture()
		f.setSubscribers()

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.NilError(t, err)
		assert.Equal(t, 0, report.Attempted)
		assert.Assert(t, is.Len(f.mailer.SendOrder, 0))
	})

	t.Run("MissingSubscriberDocument", func(t *testing.T) {
		f := newDispatcherFixture()

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.NilError(t, err)
		assert.Equal(t, 0, report.Attempted)
	})
}

func TestDispatchSendsToEverySubscriber(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture()
	f.setSubscribers("alice@test.com", "bob@test.com", "carol@test.com")

	report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

	assert.NilError(t, err)
	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 3, report.Succeeded)
	assert.Assert(t, is.Len(report.Failed, 0))
	assert.Assert(t, is.DeepEqual(
		[]string{"alice@test.com", "bob@test.com", "carol@test.com"},
		f.mailer.SendOrder,
	))
	assert.Equal(t, 3, f.throttle.PauseCalls)

	_, msg := f.mailer.GetMessageTo(t, "bob@test.com")
	assert.Assert(t, is.Contains(msg, "To: bob@test.com"))
	assert.Assert(t, is.Contains(msg, "Subject: New free games this week"))
	assert.Assert(t, is.Contains(
		msg, "email=bob%40test.com&action=unsubscribe",
	))
	assert.Assert(t, is.Contains(msg, "List-Unsubscribe-Post"))
}

func TestDispatchRecordsFailuresAndCompletesTheBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("SendErrorDoesNotStopLaterSends", func(t *testing.T) {
		f := newDispatcherFixture()
		f.setSubscribers("alice@test.com", "bob@test.com", "carol@test.com")
		f.mailer.RecipientErrors["bob@test.com"] = errors.New("mailbox on fire")

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.NilError(t, err)
		assert.Equal(t, 3, report.Attempted)
		assert.Equal(t, 2, report.Succeeded)
		assert.Assert(t, is.DeepEqual([]SendFailure{
			{Recipient: "bob@test.com", Reason: "mailbox on fire"},
		}, report.Failed))
		f.mailer.GetMessageTo(t, "carol@test.com")
	})

	t.Run("SuppressedRecipientFailsWithoutSendAttempt", func(t *testing.T) {
		f := newDispatcherFixture()
		f.setSubscribers("alice@test.com", "bob@test.com")
		f.suppressor.Addresses["alice@test.com"] = true

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.NilError(t, err)
		assert.Equal(t, 2, report.Attempted)
		assert.Equal(t, 1, report.Succeeded)
		assert.Assert(t, is.DeepEqual([]SendFailure{
			{Recipient: "alice@test.com", Reason: "suppressed"},
		}, report.Failed))
		f.mailer.AssertNoMessageSent(t, "alice@test.com")
		assert.Equal(t, 1, f.throttle.PauseCalls)
	})

	t.Run("SuppressionCheckErrorCountsAsTheAttempt", func(t *testing.T) {
		f := newDispatcherFixture()
		f.setSubscribers("alice@test.com", "bob@test.com")
		f.suppressor.Errors["alice@test.com"] = errors.New("ses unavailable")

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.NilError(t, err)
		assert.Equal(t, 2, report.Attempted)
		assert.Equal(t, 1, report.Succeeded)
		assert.Equal(t, "ses unavailable", report.Failed[0].Reason)
		f.mailer.AssertNoMessageSent(t, "alice@test.com")
	})

	t.Run("ThrottleErrorRecordedPerRecipient", func(t *testing.T) {
		f := newDispatcherFixture()
		f.setSubscribers("alice@test.com", "bob@test.com")
		f.throttle.PauseError = errors.New("quota exhausted")

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.NilError(t, err)
		assert.Equal(t, 2, report.Attempted)
		assert.Equal(t, 0, report.Succeeded)
		assert.Assert(t, is.Len(report.Failed, 2))
		assert.Assert(t, is.Len(f.mailer.SendOrder, 0))
	})
}

func TestDispatchPrerunFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("SubscriberReadFailure", func(t *testing.T) {
		f := newDispatcherFixture()
		storeErr := errors.New("store down")
		f.store.SimulateGetErr = func(_ string) error {
			return storeErr
		}

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.Assert(t, is.Nil(report))
		assert.Assert(t, testutils.ErrorIs(err, storeErr))
		assert.Assert(t, is.Len(f.mailer.SendOrder, 0))
	})

	t.Run("InsufficientBulkCapacity", func(t *testing.T) {
		f := newDispatcherFixture()
		f.setSubscribers("alice@test.com")
		f.throttle.BulkCapError = email.ErrBulkSendWouldExceedCapacity

		report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

		assert.Assert(t, is.Nil(report))
		assert.Assert(
			t, testutils.ErrorIs(err, email.ErrBulkSendWouldExceedCapacity),
		)
		assert.Assert(t, is.Len(f.mailer.SendOrder, 0))
	})
}

func TestDispatchCapsRecipients(t *testing.T) {
	ctx := context.Background()
	f := newDispatcherFixture()
	f.setSubscribers("alice@test.com", "bob@test.com", "carol@test.com")
	f.dispatcher.MaxRecipients = 2

	report, err := f.dispatcher.Dispatch(ctx, email.ExampleMessage)

	assert.NilError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Assert(t, is.DeepEqual(
		[]string{"alice@test.com", "bob@test.com"}, f.mailer.SendOrder,
	))
	f.logs.AssertContains(t, "limiting recipients to 2 of 3")
}
