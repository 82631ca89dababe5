package email

import (
	"io"
	"net/url"
	"strings"
)

const UnsubscribeUrlTemplate = "{{UnsubscribeUrl}}"

// Recipient carries one subscriber address plus the unsubscribe values
// substituted into each copy of a dispatch message.
type Recipient struct {
	Email       string
	unsubUrl    string
	unsubHeader []byte
}

// SetUnsubscribeInfo prepares the one-click unsubscribe header and the
// unsubscribe link substituted for UnsubscribeUrlTemplate in message
// footers. unsubEmail receives mailto unsubscribes; apiBaseUrl is the
// subscription endpoint the footer link posts to.
func (r *Recipient) SetUnsubscribeInfo(unsubEmail, apiBaseUrl string) {
	r.unsubUrl = apiBaseUrl + "?email=" + url.QueryEscape(r.Email) +
		"&action=unsubscribe"

	sb := &strings.Builder{}
	sb.WriteString("List-Unsubscribe: <mailto:")
	sb.WriteString(unsubEmail)
	sb.WriteString("?subject=unsubscribe%20")
	sb.WriteString(url.QueryEscape(r.Email))
	sb.WriteString(">, <")
	sb.WriteString(r.unsubUrl)
	sb.WriteString(">\r\n")
	r.unsubHeader = []byte(sb.String())
}

var listUnsubscribePost = []byte(
	"List-Unsubscribe-Post: List-Unsubscribe=One-Click\r\n",
)

func (r *Recipient) EmitUnsubscribeHeaders(w io.Writer) (err error) {
	// Unset unsubscribe info means a preview or test message.
	if len(r.unsubHeader) == 0 {
		return
	} else if _, err = w.Write(r.unsubHeader); err != nil {
		return
	}
	_, err = w.Write(listUnsubscribePost)
	return
}

func (r *Recipient) AddUnsubscribeUrl(msg string) string {
	return strings.Replace(msg, UnsubscribeUrlTemplate, r.unsubUrl, 1)
}
