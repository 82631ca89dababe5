package email

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

type Message struct {
	From       string
	Subject    string
	TextBody   string
	TextFooter string
	HtmlBody   string
	HtmlFooter string
}

func NewMessageFromJson(r io.Reader) (msg *Message, err error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	msg = &Message{}

	if err = decoder.Decode(msg); err != nil {
		msg = nil
		err = fmt.Errorf("failed to parse message input from JSON: %s", err)
	} else if err = msg.Validate(); err != nil {
		msg = nil
	}
	return
}

func MustParseMessageFromJson(r io.Reader) (msg *Message) {
	var err error
	if msg, err = NewMessageFromJson(r); err != nil {
		panic("failed to parse message from JSON: " + err.Error())
	}
	return
}

func (msg *Message) Validate() error {
	errs := make([]error, 0, 4)

	if _, err := mail.ParseAddress(msg.From); err != nil {
		errs = append(errs, fmt.Errorf("invalid From address: %s", err))
	}
	if msg.Subject == "" {
		errs = append(errs, errors.New("missing Subject"))
	}
	if msg.TextBody == "" {
		errs = append(errs, errors.New("missing TextBody"))
	}
	if msg.HtmlBody != "" && msg.HtmlFooter == "" {
		errs = append(errs, errors.New("HtmlBody present without HtmlFooter"))
	}

	if err := errors.Join(errs...); err != nil {
		return errors.New("message failed validation: " + err.Error())
	}
	return nil
}

// MessageTemplate is a Message with headers prefixed and bodies already
// CRLF-converted and quoted-printable encoded, ready to emit once per
// recipient. Footers stay unencoded until emit time so per recipient
// unsubscribe URLs can be substituted in.
type MessageTemplate Message

func NewMessageTemplateFromJson(r io.Reader) (*MessageTemplate, error) {
	msg, err := NewMessageFromJson(r)
	if err != nil {
		return nil, err
	}
	return ConvertToTemplate(msg)
}

func ConvertToTemplate(m *Message) (mt *MessageTemplate, err error) {
	t := &MessageTemplate{
		From:       "From: " + m.From,
		Subject:    "Subject: " + m.Subject,
		TextBody:   convertToCrlf(m.TextBody),
		TextFooter: convertToCrlf(m.TextFooter),
		HtmlBody:   convertToCrlf(m.HtmlBody),
		HtmlFooter: convertToCrlf(m.HtmlFooter),
	}

	tb := &strings.Builder{}
	hb := &strings.Builder{}
	if err = convertBodiesToQuotedPrintable(t, tb, hb); err != nil {
		return
	}
	t.TextBody = tb.String()
	t.HtmlBody = hb.String()
	mt = t
	return
}

// EmitMessage writes the full raw message for one recipient.
func (mt *MessageTemplate) EmitMessage(buf io.Writer, r *Recipient) error {
	w := &Writer{buf: buf}

	w.WriteLine(mt.From)
	w.WriteLine("To: " + r.Email)
	w.WriteLine(mt.Subject)

	if w.err == nil {
		w.err = r.EmitUnsubscribeHeaders(w)
	}
	w.WriteLine("MIME-Version: 1.0")

	if len(mt.HtmlBody) == 0 {
		mt.emitTextOnly(w, r)
	} else {
		mt.emitMultipart(w, r)
	}
	return w.err
}

var charsetUtf8 = map[string]string{"charset": "utf-8"}
var textContentType = mime.FormatMediaType("text/plain", charsetUtf8)
var htmlContentType = mime.FormatMediaType("text/html", charsetUtf8)

func (mt *MessageTemplate) emitTextOnly(w *Writer, r *Recipient) {
	w.WriteLine("Content-Type: " + textContentType)
	w.WriteLine("Content-Transfer-Encoding: quoted-printable")
	w.WriteLine("")
	w.WriteLine(mt.TextBody)

	if w.err == nil {
		w.err = convertToQuotedPrintable(w, r.AddUnsubscribeUrl(mt.TextFooter))
	}
}

func (mt *MessageTemplate) emitMultipart(w *Writer, r *Recipient) {
	mpw := multipart.NewWriter(w)
	contentType := mime.FormatMediaType(
		"multipart/alternative",
		map[string]string{"boundary": mpw.Boundary()},
	)
	w.WriteLine("Content-Type: " + contentType)
	w.WriteLine("")

	h := textproto.MIMEHeader{}
	h.Add("Content-Transfer-Encoding", "quoted-printable")

	if w.err == nil {
		tf := r.AddUnsubscribeUrl(mt.TextFooter)
		w.err = emitPart(mpw, h, textContentType, mt.TextBody, tf)
	}
	if w.err == nil {
		hf := r.AddUnsubscribeUrl(mt.HtmlFooter)
		w.err = emitPart(mpw, h, htmlContentType, mt.HtmlBody, hf)
	}
	if w.err == nil {
		w.err = mpw.Close()
	}
}

func emitPart(
	w *multipart.Writer,
	h textproto.MIMEHeader,
	contentType, body, footer string,
) error {
	h.Set("Content-Type", contentType)
	if pw, err := w.CreatePart(h); err != nil {
		return err
	} else if _, err = pw.Write([]byte(body + "\r\n")); err != nil {
		return err
	} else {
		return convertToQuotedPrintable(pw, footer)
	}
}

func convertBodiesToQuotedPrintable(
	mt *MessageTemplate, textBuf, htmlBuf io.Writer,
) (err error) {
	if err = convertToQuotedPrintable(textBuf, mt.TextBody); err != nil {
		err = fmt.Errorf("encoding text body failed: %s", err)
	} else if err = convertToQuotedPrintable(htmlBuf, mt.HtmlBody); err != nil {
		err = fmt.Errorf("encoding html body failed: %s", err)
	}
	return
}

func convertToQuotedPrintable(w io.Writer, msg string) error {
	qpw := quotedprintable.NewWriter(w)
	_, err := qpw.Write([]byte(msg))
	return errors.Join(err, qpw.Close())
}

func convertToCrlf(s string) string {
	// Per 'man ascii':
	// - 0x0d == "\r"
	// - 0x0a == "\n"
	numLf := 0
	for i := range s {
		if s[i] == 0x0a {
			numLf++
		}
	}

	buf := make([]byte, len(s)+numLf)
	n := 0
	emitCr := true

	for i := range s {
		c := s[i]
		switch c {
		case 0x0a:
			if emitCr {
				buf[n] = 0x0d
				n++
			}
		default:
			emitCr = c != 0x0d
		}
		buf[n] = c
		n++
	}
	return string(buf[:n])
}
