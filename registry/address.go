package registry

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/gamedrops/droplist/store"
	"github.com/gamedrops/droplist/types"
)

const ErrInvalidAddress = types.SentinelError("invalid email address")

// ValidateAddress checks that address is a plausible bare email address and
// returns it normalized for set membership. The check is syntactic only: a
// local part, an "@", and a dotted domain. Deliverability is the mail
// provider's problem, reported per recipient at dispatch time.
func ValidateAddress(address string) (normalized string, err error) {
	addr, parseErr := mail.ParseAddress(address)

	if parseErr != nil {
		err = fmt.Errorf("%w: %s: %s", ErrInvalidAddress, address, parseErr)
		return
	} else if addr.Address != address {
		// Reject display names and angle brackets; the registry stores bare
		// addresses only.
		err = fmt.Errorf("%w: %s: not a bare address", ErrInvalidAddress, address)
		return
	}

	// mail.ParseAddress guarantees an "@domain" part is present.
	domain := address[strings.LastIndexByte(address, '@')+1:]
	if !strings.Contains(domain, ".") {
		err = fmt.Errorf(
			"%w: %s: domain %q has no dot", ErrInvalidAddress, address, domain,
		)
		return
	}
	normalized = store.NormalizeAddress(address)
	return
}
