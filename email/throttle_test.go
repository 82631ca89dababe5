//go:build small_tests || all_tests

package email

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	sesv2types "github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/gamedrops/droplist/testutils"
	"github.com/gamedrops/droplist/types"
	"gotest.tools/assert"
	is "gotest.tools/assert/cmp"
)

var throttleTestTime = time.Date(
	2026, time.January, 9, 18, 0, 0, 0, time.UTC,
)

type sesThrottleFixture struct {
	ctx           context.Context
	client        *TestSesV2
	quota         *sesv2types.SendQuota
	capacity      types.Capacity
	sleepDuration time.Duration
	sleep         func(time.Duration)
	now           time.Time
	refresh       time.Duration
}

func newSesThrottleFixture() *sesThrottleFixture {
	capacity, _ := types.NewCapacity(0.75)
	f := &sesThrottleFixture{
		ctx:    context.Background(),
		client: &TestSesV2{},
		quota: &sesv2types.SendQuota{
			MaxSendRate:     25.0,
			Max24HourSend:   50000.0,
			SentLast24Hours: 25000.0,
		},
		capacity: capacity,
		now:      throttleTestTime,
		refresh:  time.Minute,
	}
	f.client.getAccountOutput = &sesv2.GetAccountOutput{SendQuota: f.quota}
	f.sleep = func(sleepFor time.Duration) {
		f.sleepDuration = sleepFor
	}
	return f
}

func (f *sesThrottleFixture) NewSesThrottle() (*SesThrottle, error) {
	now := func() time.Time { return f.now }
	return NewSesThrottle(f.ctx, f.client, f.capacity, f.sleep, now, f.refresh)
}

func (f *sesThrottleFixture) NewSesThrottleFailOnErr(
	t *testing.T,
) *SesThrottle {
	t.Helper()

	throttle, err := f.NewSesThrottle()

	if err != nil {
		t.Fatalf("unexpected test setup error: %s", err)
	}
	return throttle
}

func TestNewSesThrottle(t *testing.T) {
	t.Run("SucceedsAndFetchesQuota", func(t *testing.T) {
		f := newSesThrottleFixture()

		throttle, err := f.NewSesThrottle()

		assert.NilError(t, err)
		assert.Assert(t, f.client.getAccountInput != nil)
		assert.Equal(t, f.client, throttle.Client)
		assert.Equal(t, f.refresh, throttle.RefreshInterval)
		assert.Equal(t, f.capacity.Value(), throttle.MaxBulkCapacity.Value())
		assert.Equal(t, f.now, throttle.quotaFetchedAt)
		assert.Equal(t, time.Second/25, throttle.sendInterval)
		assert.Assert(t, throttle.nextSendAt.IsZero())
		assert.Equal(t, int(f.quota.Max24HourSend), throttle.dailyLimit)
		assert.Equal(t, int(f.quota.SentLast24Hours), throttle.sentToday)
		assert.Equal(t, 37500, throttle.bulkBudget)
	})

	t.Run("FailsIfQuotaFetchFails", func(t *testing.T) {
		f := newSesThrottleFixture()
		f.client.getAccountError = testutils.AwsServerError("test error")

		throttle, err := f.NewSesThrottle()

		assert.Assert(t, is.Nil(throttle))
		assert.ErrorContains(t, err, "failed to get AWS account info: ")
		assert.ErrorContains(t, err, "test error")
	})
}

func TestSyncQuota(t *testing.T) {
	setup := func(t *testing.T) (*sesThrottleFixture, *SesThrottle) {
		f := newSesThrottleFixture()
		throttle := f.NewSesThrottleFailOnErr(t)
		f.client.getAccountOutput.SendQuota = &sesv2types.SendQuota{
			MaxSendRate:     f.quota.MaxSendRate * 2,
			Max24HourSend:   f.quota.Max24HourSend * 2,
			SentLast24Hours: f.quota.SentLast24Hours * 2,
		}
		return f, throttle
	}

	t.Run("ReusesFreshQuota", func(t *testing.T) {
		f, throttle := setup(t)
		f.now = throttle.quotaFetchedAt.Add(f.refresh - time.Nanosecond)

		err := throttle.syncQuota(f.ctx)

		assert.NilError(t, err)
		assert.Equal(t, int(f.quota.Max24HourSend), throttle.dailyLimit)
	})

	t.Run("RefetchesStaleQuota", func(t *testing.T) {
		f, throttle := setup(t)
		f.now = throttle.quotaFetchedAt.Add(f.refresh)

		err := throttle.syncQuota(f.ctx)

		assert.NilError(t, err)
		assert.Equal(t, int(f.quota.Max24HourSend)*2, throttle.dailyLimit)
		assert.Equal(t, f.now, throttle.quotaFetchedAt)
	})
}

func TestBulkCapacityAvailable(t *testing.T) {
	setup := func(t *testing.T) (*sesThrottleFixture, *SesThrottle) {
		f := newSesThrottleFixture()
		return f, f.NewSesThrottleFailOnErr(t)
	}

	t.Run("Succeeds", func(t *testing.T) {
		f, throttle := setup(t)
		numToSend := throttle.bulkBudget - throttle.sentToday

		err := throttle.BulkCapacityAvailable(f.ctx, numToSend)

		assert.NilError(t, err)
	})

	t.Run("ErrorsIfQuotaFetchFails", func(t *testing.T) {
		f, throttle := setup(t)
		f.now = throttle.quotaFetchedAt.Add(f.refresh)
		f.client.getAccountError = testutils.AwsServerError("test error")

		err := throttle.BulkCapacityAvailable(f.ctx, 1)

		assert.ErrorContains(t, err, "failed to get AWS account info: ")
	})

	t.Run("ErrorsIfRunWouldExceedBulkShare", func(t *testing.T) {
		f, throttle := setup(t)
		numToSend := throttle.bulkBudget - throttle.sentToday + 1

		err := throttle.BulkCapacityAvailable(f.ctx, numToSend)

		assert.Assert(t, testutils.ErrorIs(err, ErrBulkSendWouldExceedCapacity))
		const expectedFmt = "%d allowed per 24h, %s bulk share (%d), " +
			"%d sent, %d requested"
		expectedMsg := fmt.Sprintf(
			expectedFmt,
			throttle.dailyLimit,
			throttle.MaxBulkCapacity,
			throttle.bulkBudget,
			throttle.sentToday,
			numToSend,
		)
		assert.ErrorContains(t, err, expectedMsg)
	})
}

func TestPauseBeforeNextSend(t *testing.T) {
	setup := func(t *testing.T) (*sesThrottleFixture, *SesThrottle) {
		f := newSesThrottleFixture()
		throttle := f.NewSesThrottleFailOnErr(t)
		throttle.sentToday = throttle.dailyLimit - 1
		return f, throttle
	}

	t.Run("SendsImmediatelyWhenIntervalHasPassed", func(t *testing.T) {
		f, throttle := setup(t)
		throttle.nextSendAt = f.now.Add(-time.Nanosecond)

		err := throttle.PauseBeforeNextSend(f.ctx)

		assert.NilError(t, err)
		assert.Equal(t, time.Duration(0), f.sleepDuration)
		assert.Equal(t, f.now.Add(throttle.sendInterval), throttle.nextSendAt)
		assert.Equal(t, throttle.dailyLimit, throttle.sentToday)
	})

	t.Run("SleepsUntilTheNextSendSlot", func(t *testing.T) {
		f, throttle := setup(t)
		wait := throttle.sendInterval / 2
		throttle.nextSendAt = f.now.Add(wait)

		err := throttle.PauseBeforeNextSend(f.ctx)

		assert.NilError(t, err)
		assert.Equal(t, wait, f.sleepDuration)
		expectedNext := f.now.Add(wait + throttle.sendInterval)
		assert.Equal(t, expectedNext, throttle.nextSendAt)
		assert.Equal(t, throttle.dailyLimit, throttle.sentToday)
	})

	t.Run("ErrorsIfQuotaFetchFails", func(t *testing.T) {
		f, throttle := setup(t)
		f.now = throttle.quotaFetchedAt.Add(f.refresh)
		f.client.getAccountError = testutils.AwsServerError("test error")

		err := throttle.PauseBeforeNextSend(f.ctx)

		assert.ErrorContains(t, err, "failed to get AWS account info: ")
	})

	t.Run("ErrorsIfDailyQuotaExhausted", func(t *testing.T) {
		f, throttle := setup(t)
		throttle.sentToday = throttle.dailyLimit

		err := throttle.PauseBeforeNextSend(f.ctx)

		assert.Assert(t, testutils.ErrorIs(err, ErrExceededMax24HourSend))
		expectedMsg := fmt.Sprintf(
			"%d max, %d sent", throttle.dailyLimit, throttle.sentToday,
		)
		assert.ErrorContains(t, err, expectedMsg)
	})
}
