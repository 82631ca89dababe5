package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gamedrops/droplist/ops"
	"github.com/gamedrops/droplist/store"
)

const DefaultMaxAttempts = 4
const DefaultBackoffBase = 300 * time.Millisecond
const DefaultBackoffJitter = 300 * time.Millisecond

// Updater applies one subscription mutation to the subscriber document via
// a read-modify-write cycle guarded by the store's version token. Conflicts
// with concurrent writers are retried with jittered backoff up to
// MaxAttempts; every other failure aborts immediately, since retrying a
// network or permission error against the same store cannot succeed and
// only delays the caller.
type Updater struct {
	Store         store.DocumentStore
	DocumentPath  string
	MaxAttempts   int
	BackoffBase   time.Duration
	BackoffJitter time.Duration
	Jitter        func(max time.Duration) time.Duration
	Pause         func(ctx context.Context, d time.Duration) error
	Log           *log.Logger
}

func NewUpdater(
	docStore store.DocumentStore, documentPath string, logger *log.Logger,
) *Updater {
	return &Updater{
		Store:         docStore,
		DocumentPath:  documentPath,
		MaxAttempts:   DefaultMaxAttempts,
		BackoffBase:   DefaultBackoffBase,
		BackoffJitter: DefaultBackoffJitter,
		Jitter: func(max time.Duration) time.Duration {
			return time.Duration(rand.Int63n(int64(max)))
		},
		Pause: pauseForBackoff,
		Log:   logger,
	}
}

// pauseForBackoff waits out one backoff interval, or returns early with the
// context's error if the caller gives up first.
func pauseForBackoff(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Apply validates the request, then runs the optimistic concurrency loop:
// read the document and its token, mutate the decoded set, and write the
// result back conditioned on the token still being current. The set
// mutation is pure, so losing the write race costs nothing but a re-read.
//
// Mutations are idempotent: subscribing an existing member or unsubscribing
// an absent one converges on the same set, and the write is attempted
// regardless so the caller still gets a definitive answer from the store.
func (u *Updater) Apply(
	ctx context.Context, address string, action Action,
) (result ops.OperationResult, err error) {
	if address, err = ValidateAddress(address); err != nil {
		return
	} else if action, err = ParseAction(string(action)); err != nil {
		return
	}

	changelog := string(action) + " " + address

	for attempt := 0; attempt < u.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := u.BackoffBase + u.Jitter(u.BackoffJitter)
			if err = u.Pause(ctx, backoff); err != nil {
				return
			}
		}

		var applied bool
		if applied, err = u.applyOnce(ctx, address, action, changelog); err != nil {
			return
		} else if applied {
			result = actionResult(action)
			u.Log.Printf("%s: %s", result, address)
			return
		}
	}

	err = fmt.Errorf(
		"%w: failed to %s after %d attempts",
		ops.ErrExhausted, changelog, u.MaxAttempts,
	)
	return
}

// applyOnce performs one read-modify-write pass. A false return with a nil
// error means the conditional write lost to a concurrent writer and the
// pass should be retried against the new document version.
func (u *Updater) applyOnce(
	ctx context.Context, address string, action Action, changelog string,
) (applied bool, err error) {
	doc, err := u.Store.Get(ctx, u.DocumentPath)

	if errors.Is(err, store.ErrDocumentNotFound) {
		// First ever write creates the document.
		doc, err = &store.Document{}, nil
	} else if err != nil {
		return
	}

	// A malformed body decodes as an empty set, so a corrupted document
	// heals on the next successful update instead of blocking all of them.
	subscribers := store.ParseSubscriberSet(doc.Body)

	if action == ActionSubscribe {
		subscribers.Add(address)
	} else {
		subscribers.Remove(address)
	}

	_, err = u.Store.Put(
		ctx, u.DocumentPath, subscribers.Encode(), doc.Token, changelog,
	)

	if err == nil {
		applied = true
	} else if errors.Is(err, store.ErrVersionConflict) {
		u.Log.Printf("version conflict on %s, retrying: %s", u.DocumentPath, err)
		err = nil
	}
	return
}

func actionResult(action Action) ops.OperationResult {
	if action == ActionSubscribe {
		return ops.Subscribed
	}
	return ops.Unsubscribed
}
