//go:build small_tests || all_tests

package registry

import (
	"testing"

	"github.com/gamedrops/droplist/testutils"
	"gotest.tools/assert"
)

func TestValidateAddress(t *testing.T) {
	t.Run("AcceptsAndNormalizesBareAddress", func(t *testing.T) {
		normalized, err := ValidateAddress("Foo@Bar.Com")

		assert.NilError(t, err)
		assert.Equal(t, "foo@bar.com", normalized)
	})

	t.Run("RejectsUnparseableAddress", func(t *testing.T) {
		_, err := ValidateAddress("not-an-email")

		assert.Assert(t, testutils.ErrorIs(err, ErrInvalidAddress))
	})

	t.Run("RejectsAddressWithDisplayName", func(t *testing.T) {
		_, err := ValidateAddress("Foo Bar <foo@bar.com>")

		assert.Assert(t, testutils.ErrorIs(err, ErrInvalidAddress))
		assert.ErrorContains(t, err, "not a bare address")
	})

	t.Run("RejectsDomainWithoutDot", func(t *testing.T) {
		_, err := ValidateAddress("foo@localhost")

		assert.Assert(t, testutils.ErrorIs(err, ErrInvalidAddress))
		assert.ErrorContains(t, err, "has no dot")
	})

	t.Run("RejectsEmptyAddress", func(t *testing.T) {
		_, err := ValidateAddress("")

		assert.Assert(t, testutils.ErrorIs(err, ErrInvalidAddress))
	})
}
