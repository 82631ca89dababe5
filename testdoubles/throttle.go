package testdoubles

import "context"

type Throttle struct {
	BulkCapError error
	PauseCalls   int
	PauseError   error
}

func NewThrottle() *Throttle {
	return &Throttle{}
}

func (t *Throttle) BulkCapacityAvailable(
	_ context.Context, _ int,
) error {
	return t.BulkCapError
}

func (t *Throttle) PauseBeforeNextSend(_ context.Context) error {
	t.PauseCalls++
	return t.PauseError
}
