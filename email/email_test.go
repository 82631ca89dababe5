//go:build small_tests || all_tests

package email

import (
	"errors"
	"strings"
	"testing"

	"gotest.tools/assert"
)

var errTestWrite = errors.New("test write error")

func TestExampleMessage(t *testing.T) {
	t.Run("ParsesAndValidates", func(t *testing.T) {
		assert.NilError(t, ExampleMessage.Validate())
	})

	t.Run("RecipientCarriesUnsubscribeInfo", func(t *testing.T) {
		assert.Equal(t, "subscriber@foo.com", ExampleRecipient.Email)
		assert.Assert(t, ExampleRecipient.unsubUrl != "")
	})
}

func TestEmitPreviewMessageFromJson(t *testing.T) {
	t.Run("Succeeds", func(t *testing.T) {
		input := strings.NewReader(ExampleMessageJson)
		output := &strings.Builder{}

		err := EmitPreviewMessageFromJson(input, output)

		assert.NilError(t, err)
		preview := output.String()
		assert.Assert(t, strings.Contains(preview, "To: subscriber@foo.com"))
		assert.Assert(t, strings.Contains(
			preview, "Subject: New free games this week",
		))
		assert.Assert(t, strings.Contains(
			preview, "Content-Type: multipart/alternative",
		))
	})

	t.Run("FailsOnMalformedInput", func(t *testing.T) {
		input := strings.NewReader("not json")
		output := &strings.Builder{}

		err := EmitPreviewMessageFromJson(input, output)

		assert.ErrorContains(t, err, "failed to parse message input from JSON")
	})

	t.Run("ReturnsEmitError", func(t *testing.T) {
		input := strings.NewReader(ExampleMessageJson)
		output := &ErrWriter{
			buf:     &strings.Builder{},
			errorOn: "To: ",
			err:     errTestWrite,
		}

		err := EmitPreviewMessageFromJson(input, output)

		assert.ErrorContains(t, err, "failed to emit preview message: ")
	})
}
