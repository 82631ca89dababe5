package registry

import (
	"fmt"

	"github.com/gamedrops/droplist/types"
)

const ErrInvalidAction = types.SentinelError("invalid action")

// Action is one of the two mutations a subscription request can apply to
// the subscriber document.
type Action string

const (
	ActionSubscribe   Action = "subscribe"
	ActionUnsubscribe Action = "unsubscribe"
)

// ParseAction accepts exactly "subscribe" or "unsubscribe". Anything else,
// including different casing, is invalid input from an untrusted caller.
func ParseAction(value string) (Action, error) {
	switch Action(value) {
	case ActionSubscribe:
		return ActionSubscribe, nil
	case ActionUnsubscribe:
		return ActionUnsubscribe, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAction, value)
}
