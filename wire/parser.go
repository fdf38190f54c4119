package wire

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Parser turns one already-framed response (as produced by internal/framer)
// into a Response AST. It is an external collaborator: the core engine
// only calls Parse and never inspects wire syntax itself.
//
// Parse's contract is deliberately narrow: Tag, a raw Command word (the
// literal first atom on the line — still a decimal string like "17" for a
// numeric untagged response, not yet split into a sequence number), and
// Attrs holding whatever is left, tokenized. Normalizing a numeric untagged
// response into Command+Nr, and splitting resp-text into Code/CodeArg/
// HumanReadable, is dispatcher work (imapcore/dispatch.go's normalizeResponse/
// extractRespText), not the parser's — so that a caller-supplied Parser only
// has to produce this raw triple and still gets full engine behavior.
//
// Implementations must return an error for malformed input; they must never
// block or perform I/O.
type Parser interface {
	Parse(text string) (*Response, error)
}

// DefaultParser is a Parser grounded on internal/imapwire/decoder.go's
// token reader (see decoder.go) and imapclient/client.go's readResponse*
// family, generalized from that file's hardcoded "switch typ" into a
// reusable AST producer. It understands resp-cond-state (OK/NO/BAD/BYE/
// PREAUTH) and capability/flag/numeric-prefixed attribute lines at the
// tokenization level; callers with richer needs (full FETCH msg-att,
// ENVELOPE, ...) can layer a decorator on top, or provide their own Parser.
type DefaultParser struct{}

// Parse implements Parser.
func (DefaultParser) Parse(text string) (*Response, error) {
	dec := newDecoder(text)

	var tag string
	if dec.Special('*') {
		tag = "*"
	} else if !dec.ExpectAtom(&tag) {
		return nil, fmt.Errorf("wire: cannot read tag: %w", dec.Err())
	}
	if !dec.ExpectSP() {
		return nil, fmt.Errorf("wire: %w", dec.Err())
	}

	resp := &Response{Tag: tag}

	var first string
	if !dec.ExpectAtom(&first) {
		return nil, fmt.Errorf("wire: cannot read response type: %w", dec.Err())
	}
	resp.Command = upper(first)

	switch resp.Command {
	case "OK", "NO", "BAD", "BYE", "PREAUTH":
		attrs, err := readRespTextAttrs(dec)
		if err != nil {
			return nil, err
		}
		resp.Attrs = attrs
	default:
		if dec.SP() {
			fields, ok := dec.ReadFields()
			if !ok {
				return nil, fmt.Errorf("wire: in attributes: %w", dec.Err())
			}
			resp.Attrs = fields
		}
	}

	return resp, nil
}

// readRespTextAttrs tokenizes resp-text (RFC 3501 §9): "SP [resp-text-code]
// text". It hands back the raw pieces — an optional TokenSection for the
// bracketed code, followed by a TokenString holding the trailing free text
// verbatim (not tokenized further, since it's prose rather than a structured
// attribute list) — without interpreting them into separate fields.
func readRespTextAttrs(dec *decoder) ([]Token, error) {
	if !dec.SP() {
		// Some servers/tests omit the text entirely ("W1 OK\r\n").
		return nil, nil
	}

	var attrs []Token
	if b, ok := dec.peekByte(); ok && b == '[' {
		items, ok := dec.Section()
		if !ok {
			return nil, fmt.Errorf("wire: in response code: %w", dec.Err())
		}
		attrs = append(attrs, Token{Kind: TokenSection, Items: items})
		dec.SP() // optional SP before the trailing text
	}

	var text string
	dec.Text(&text) // resp-text may be empty
	attrs = append(attrs, Token{Kind: TokenString, Str: sanitizeText(text)})
	return attrs, nil
}

// sanitizeText applies a Latin-1 fallback: some servers emit non-UTF-8
// bytes in human-readable text. Decode via charmap.ISO8859_1 when the text
// isn't valid UTF-8 so callers always see a valid Go string.
func sanitizeText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

func upper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
