package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/gamedrops/droplist/ops"
	"github.com/gamedrops/droplist/types"
)

const ErrExceededMax24HourSend = types.SentinelError(
	"exceeded 24 hour send quota",
)

const ErrBulkSendWouldExceedCapacity = types.SentinelError(
	"dispatch run would exceed the bulk share of the 24 hour send quota",
)

// Throttle paces dispatch sends to the provider's send rate and refuses
// runs that would blow through the daily quota.
type Throttle interface {
	// BulkCapacityAvailable reports whether numToSend more sends fit in
	// the share of the daily quota reserved for dispatch runs.
	BulkCapacityAvailable(ctx context.Context, numToSend int) error

	// PauseBeforeNextSend blocks until the next send is allowed, then
	// claims its slot against the daily quota.
	PauseBeforeNextSend(context.Context) error
}

// SesThrottle derives its pacing from the SES account send quota, refreshed
// at most once per RefreshInterval. MaxBulkCapacity is the slice of the
// daily quota dispatch runs may claim; the rest stays free for subscription
// mail and anything else the account sends.
type SesThrottle struct {
	Client          SesV2Api
	MaxBulkCapacity types.Capacity
	Sleep           func(time.Duration)
	Now             func() time.Time
	RefreshInterval time.Duration

	quotaFetchedAt time.Time
	sendInterval   time.Duration
	nextSendAt     time.Time
	dailyLimit     int
	sentToday      int
	bulkBudget     int
}

func NewSesThrottle(
	ctx context.Context,
	client SesV2Api,
	maxCap types.Capacity,
	sleep func(time.Duration),
	now func() time.Time,
	refreshInterval time.Duration,
) (t *SesThrottle, err error) {
	throttle := &SesThrottle{
		Client:          client,
		MaxBulkCapacity: maxCap,
		Sleep:           sleep,
		Now:             now,
		RefreshInterval: refreshInterval,
	}
	if err = throttle.syncQuota(ctx); err == nil {
		t = throttle
	}
	return
}

func (t *SesThrottle) BulkCapacityAvailable(
	ctx context.Context, numToSend int,
) (err error) {
	if err = t.syncQuota(ctx); err != nil {
		return
	} else if t.bulkBudget-t.sentToday < numToSend {
		const errFmt = "%w: %d allowed per 24h, %s bulk share (%d), " +
			"%d sent, %d requested"
		err = fmt.Errorf(
			errFmt,
			ErrBulkSendWouldExceedCapacity,
			t.dailyLimit,
			t.MaxBulkCapacity,
			t.bulkBudget,
			t.sentToday,
			numToSend,
		)
	}
	return
}

func (t *SesThrottle) PauseBeforeNextSend(ctx context.Context) (err error) {
	if err = t.syncQuota(ctx); err != nil {
		return
	} else if t.sentToday >= t.dailyLimit {
		err = fmt.Errorf(
			"%w: %d max, %d sent", ErrExceededMax24HourSend,
			t.dailyLimit, t.sentToday,
		)
		return
	}

	now := t.Now()
	if wait := t.nextSendAt.Sub(now); wait > 0 {
		t.Sleep(wait)
		t.nextSendAt = t.nextSendAt.Add(t.sendInterval)
	} else {
		t.nextSendAt = now.Add(t.sendInterval)
	}
	t.sentToday++
	return
}

func (t *SesThrottle) syncQuota(ctx context.Context) (err error) {
	now := t.Now()

	if now.Sub(t.quotaFetchedAt) < t.RefreshInterval {
		return
	}

	output, err := t.Client.GetAccount(ctx, &sesv2.GetAccountInput{})
	if err != nil {
		return ops.AwsError("failed to get AWS account info", err)
	}
	quota := output.SendQuota

	t.sendInterval = time.Duration(float64(time.Second) / quota.MaxSendRate)
	t.dailyLimit = int(quota.Max24HourSend)
	t.sentToday = int(quota.SentLast24Hours)
	t.bulkBudget = t.MaxBulkCapacity.MaxAvailable(t.dailyLimit)
	t.quotaFetchedAt = now
	return
}
