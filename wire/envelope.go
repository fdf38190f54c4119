package wire

import (
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"
)

// Envelope is the parsed FETCH ENVELOPE attribute (RFC 3501 §7.4.2): the
// message's own date/subject/address/in-reply-to/message-id fields, as
// opposed to the mailbox-assigned metadata the rest of FETCH reports.
type Envelope struct {
	Date      time.Time
	Subject   string
	From      []Address
	Sender    []Address
	ReplyTo   []Address
	To        []Address
	Cc        []Address
	Bcc       []Address
	InReplyTo string
	MessageID string
}

// Address is one ENVELOPE address structure: (name, source-route, mailbox,
// host), per RFC 3501 §7.4.2's addr-name/addr-adl/addr-mailbox/addr-host.
type Address struct {
	Name        string
	SourceRoute string
	Mailbox     string
	Host        string
}

// ParseEnvelope reads one ENVELOPE attribute value (already split into a
// 10-item TokenList by the decoder) into an Envelope. Not wired into
// DefaultParser.Parse directly, since a bare FETCH response's attrs are
// left as raw Tokens for callers with msg-att needs to decode themselves;
// this is that decoding step for the ENVELOPE attribute specifically.
//
// Grounded on imapclient/envelope.go's Envelope/Address struct shapes (the
// wire format is mirrored field-for-field), but date parsing is delegated
// to go-message/mail's Header.Date instead of a narrow time.Parse layout,
// since RFC 5322 dates in the wild carry obsolete zone names, comments,
// and missing leading zeros that a fixed layout string rejects.
func ParseEnvelope(items []Token) (*Envelope, error) {
	if len(items) != 10 {
		return nil, fmt.Errorf("wire: envelope: expected 10 fields, got %d", len(items))
	}

	env := &Envelope{
		Subject:   tokenText(items[1]),
		From:      parseAddressList(items[2]),
		Sender:    parseAddressList(items[3]),
		ReplyTo:   parseAddressList(items[4]),
		To:        parseAddressList(items[5]),
		Cc:        parseAddressList(items[6]),
		Bcc:       parseAddressList(items[7]),
		InReplyTo: tokenText(items[8]),
		MessageID: tokenText(items[9]),
	}
	if raw := tokenText(items[0]); raw != "" {
		env.Date = parseEnvelopeDate(raw)
	}
	return env, nil
}

func parseEnvelopeDate(raw string) time.Time {
	h := mail.HeaderFromMap(map[string][]string{"Date": {raw}})
	t, err := h.Date()
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseAddressList(tok Token) []Address {
	if tok.Kind == TokenNil || len(tok.Items) == 0 {
		return nil
	}
	addrs := make([]Address, 0, len(tok.Items))
	for _, item := range tok.Items {
		if len(item.Items) != 4 {
			continue
		}
		addrs = append(addrs, Address{
			Name:        tokenText(item.Items[0]),
			SourceRoute: tokenText(item.Items[1]),
			Mailbox:     tokenText(item.Items[2]),
			Host:        tokenText(item.Items[3]),
		})
	}
	return addrs
}

func tokenText(t Token) string {
	switch t.Kind {
	case TokenAtom:
		return t.Atom
	case TokenString:
		return t.Str
	default:
		return ""
	}
}
