package email

import (
	"fmt"
	"io"
	"strings"
)

const ExampleMessageJson = `  {
    "From": "Droplist Updates <updates@example.com>",
    "Subject": "New free games this week",
    "TextBody": "Epic Games Store - Ghost of a Tale (Fresh Drop)",
    "TextFooter": "Unsubscribe: ` + UnsubscribeUrlTemplate + `",
    "HtmlBody": "<!DOCTYPE html><html><head></head><body>Epic Games Store &mdash; Ghost of a Tale<br/>",
    "HtmlFooter": "<a href='` + UnsubscribeUrlTemplate +
	`'>Unsubscribe</a></body></html>"
  }`

var ExampleMessage *Message = MustParseMessageFromJson(
	strings.NewReader(ExampleMessageJson),
)

var ExampleRecipient *Recipient = func() (r *Recipient) {
	r = &Recipient{Email: "subscriber@foo.com"}
	r.SetUnsubscribeInfo("unsubscribe@bar.com", "https://bar.com/api/subscribe")
	return
}()

func EmitPreviewMessageFromJson(input io.Reader, output io.Writer) error {
	if mt, err := NewMessageTemplateFromJson(input); err != nil {
		return err
	} else if err = mt.EmitMessage(output, ExampleRecipient); err != nil {
		return fmt.Errorf("failed to emit preview message: %w", err)
	}
	return nil
}
