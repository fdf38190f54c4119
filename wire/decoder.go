package wire

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// decoder reads IMAP tokens out of one already-framed response string.
//
// Framing (splitting the byte stream into complete responses, including
// inline literal bodies) happens upstream in internal/framer; by the time a
// decoder sees a response, any literal body is already embedded verbatim at
// the position its {N} token declared. Adapted from
// internal/imapwire/decoder.go, which decodes straight off a *bufio.Reader
// because framing and parsing are the same step there; here they are
// split into separate stages, so the decoder only needs random access
// into a string.
type decoder struct {
	s   string
	pos int
	err error
}

func newDecoder(s string) *decoder {
	return &decoder{s: s}
}

func (d *decoder) Err() error { return d.err }

func (d *decoder) fail(err error) bool {
	if d.err == nil {
		d.err = err
	}
	return false
}

func (d *decoder) eof() bool {
	return d.pos >= len(d.s)
}

func (d *decoder) peekByte() (byte, bool) {
	if d.eof() {
		return 0, false
	}
	return d.s[d.pos], true
}

func (d *decoder) acceptByte(want byte) bool {
	b, ok := d.peekByte()
	if !ok || b != want {
		return false
	}
	d.pos++
	return true
}

func (d *decoder) Expect(ok bool, name string) bool {
	if !ok {
		if d.err == nil {
			got := "EOF"
			if !d.eof() {
				got = string(d.s[d.pos])
			}
			d.err = fmt.Errorf("wire: expected %s, got %q", name, got)
		}
		return false
	}
	return true
}

func (d *decoder) SP() bool { return d.acceptByte(' ') }

func (d *decoder) ExpectSP() bool { return d.Expect(d.SP(), "SP") }

func (d *decoder) Special(b byte) bool { return d.acceptByte(b) }

func (d *decoder) ExpectSpecial(b byte) bool {
	return d.Expect(d.Special(b), fmt.Sprintf("%q", string(b)))
}

// CRLF accepts a CRLF or a bare LF: some servers are sloppy about the line
// terminator, and tolerating both costs nothing here.
func (d *decoder) CRLF() bool {
	start := d.pos
	if d.acceptByte('\r') && d.acceptByte('\n') {
		return true
	}
	d.pos = start
	return d.acceptByte('\n')
}

func (d *decoder) ExpectCRLF() bool { return d.Expect(d.CRLF(), "CRLF") }

func (d *decoder) AtEnd() bool {
	return d.eof()
}

// Atom reads an IMAP atom: any run of non-special, non-control bytes.
func (d *decoder) Atom(ptr *string) bool {
	start := d.pos
	for !d.eof() {
		b := d.s[d.pos]
		var valid bool
		switch b {
		case '(', ')', '{', ' ', '%', '*', '"', '\\', ']', '[':
			valid = false
		case '\r', '\n':
			valid = false
		default:
			valid = !unicode.IsControl(rune(b))
		}
		if !valid {
			break
		}
		d.pos++
	}
	if d.pos == start {
		return false
	}
	*ptr = d.s[start:d.pos]
	return true
}

func (d *decoder) ExpectAtom(ptr *string) bool {
	return d.Expect(d.Atom(ptr), "atom")
}

// Text reads the remainder of the line (resp-text), stopping at CR/LF.
func (d *decoder) Text(ptr *string) bool {
	start := d.pos
	for !d.eof() {
		b := d.s[d.pos]
		if b == '\r' || b == '\n' {
			break
		}
		d.pos++
	}
	*ptr = d.s[start:d.pos]
	return true
}

func (d *decoder) ExpectText(ptr *string) bool {
	return d.Expect(d.Text(ptr), "text")
}

func (d *decoder) Number64() (int64, bool) {
	start := d.pos
	for !d.eof() && d.s[d.pos] >= '0' && d.s[d.pos] <= '9' {
		d.pos++
	}
	if d.pos == start {
		return 0, false
	}
	v, err := strconv.ParseInt(d.s[start:d.pos], 10, 64)
	if err != nil {
		d.pos = start
		return 0, false
	}
	return v, true
}

func (d *decoder) ExpectNumber64() (int64, bool) {
	v, ok := d.Number64()
	d.Expect(ok, "number")
	return v, ok
}

// QuotedString reads a double-quoted string, honoring backslash escapes.
func (d *decoder) QuotedString(ptr *string) bool {
	if !d.acceptByte('"') {
		return false
	}
	var sb strings.Builder
	for {
		if d.eof() {
			return d.fail(fmt.Errorf("wire: unterminated quoted string"))
		}
		b := d.s[d.pos]
		if b == '"' {
			d.pos++
			break
		}
		if b == '\\' && d.pos+1 < len(d.s) {
			d.pos++
			sb.WriteByte(d.s[d.pos])
			d.pos++
			continue
		}
		sb.WriteByte(b)
		d.pos++
	}
	*ptr = sb.String()
	return true
}

// Literal reads an already-inlined {N} or {N+} literal body: the token plus
// its CRLF and exactly N following raw bytes, as left in place by the
// framer.
func (d *decoder) Literal(ptr *string) bool {
	start := d.pos
	if !d.acceptByte('{') {
		return false
	}
	n, ok := d.Number64()
	if !ok {
		d.pos = start
		return false
	}
	d.acceptByte('+') // non-synchronizing marker, framing-only
	if !d.acceptByte('}') {
		d.pos = start
		return false
	}
	if !d.CRLF() {
		d.pos = start
		return false
	}
	if int64(len(d.s)-d.pos) < n {
		return d.fail(fmt.Errorf("wire: literal declares %d bytes, only %d available", n, len(d.s)-d.pos))
	}
	*ptr = d.s[d.pos : d.pos+int(n)]
	d.pos += int(n)
	return true
}

// String reads either a quoted string or a literal.
func (d *decoder) String(ptr *string) bool {
	if b, ok := d.peekByte(); ok && b == '{' {
		return d.Literal(ptr)
	}
	return d.QuotedString(ptr)
}

func (d *decoder) ExpectString(ptr *string) bool {
	return d.Expect(d.String(ptr), "string")
}

// NString reads NIL, a quoted string, or a literal.
func (d *decoder) NString(ptr *string) (nonNil bool, ok bool) {
	var atom string
	save := d.pos
	if d.Atom(&atom) {
		if strings.EqualFold(atom, "NIL") {
			return false, true
		}
		d.pos = save
	}
	if d.String(ptr) {
		return true, true
	}
	return false, false
}

// List reads a parenthesized list, calling f once per element position; f
// is responsible for decoding that element and stopping at the next SP or
// the closing ')'.
func (d *decoder) List(f func() bool) bool {
	if !d.acceptByte('(') {
		return false
	}
	first := true
	for {
		if b, ok := d.peekByte(); ok && b == ')' {
			d.pos++
			return true
		}
		if !first {
			if !d.ExpectSP() {
				return false
			}
		}
		first = false
		if !f() {
			return d.err == nil && d.fail(fmt.Errorf("wire: invalid list element"))
		}
	}
}

// ExpectList is List with its own error message.
func (d *decoder) ExpectList(f func() bool) bool {
	return d.Expect(d.List(f), "list")
}

// Section reads a bracketed response-code section: '[' token (SP token)* ']'.
func (d *decoder) Section() ([]Token, bool) {
	if !d.acceptByte('[') {
		return nil, false
	}
	var items []Token
	for {
		if b, ok := d.peekByte(); ok && b == ']' {
			d.pos++
			return items, true
		}
		if len(items) > 0 {
			if !d.ExpectSP() {
				return nil, false
			}
		}
		tok, ok := d.ReadToken()
		if !ok {
			return nil, false
		}
		items = append(items, tok)
	}
}

// ReadToken reads one generic attribute: atom (including a flag such as
// \Seen), number, string, literal, NIL, a nested parenthesized list, or an
// atom with a bracketed section attached (BODY[TEXT]), read as a
// TokenSection whose Atom is the name before the bracket.
func (d *decoder) ReadToken() (Token, bool) {
	b, ok := d.peekByte()
	if !ok {
		d.fail(fmt.Errorf("wire: unexpected end of response"))
		return Token{}, false
	}
	switch {
	case b == '(':
		var items []Token
		ok := d.List(func() bool {
			tok, ok := d.ReadToken()
			if !ok {
				return false
			}
			items = append(items, tok)
			return true
		})
		if !ok {
			return Token{}, false
		}
		return Token{Kind: TokenList, Items: items}, true
	case b == '[':
		items, ok := d.Section()
		if !ok {
			return Token{}, false
		}
		return Token{Kind: TokenSection, Items: items}, true
	case b == '"' || b == '{':
		var s string
		if !d.String(&s) {
			return Token{}, false
		}
		return Token{Kind: TokenString, Str: s}, true
	case b >= '0' && b <= '9':
		n, ok := d.Number64()
		if !ok {
			return Token{}, false
		}
		return Token{Kind: TokenNumber, Number: n}, true
	case b == '\\':
		// A flag, e.g. \Seen: a backslash followed by an atom.
		d.pos++
		var a string
		if !d.Atom(&a) {
			d.pos--
			return Token{}, false
		}
		return Token{Kind: TokenAtom, Atom: `\` + a}, true
	default:
		var a string
		if !d.Atom(&a) {
			return Token{}, false
		}
		if strings.EqualFold(a, "NIL") {
			return Token{Kind: TokenNil}, true
		}
		if b, ok := d.peekByte(); ok && b == '[' {
			items, ok := d.Section()
			if !ok {
				return Token{}, false
			}
			return Token{Kind: TokenSection, Atom: a, Items: items}, true
		}
		return Token{Kind: TokenAtom, Atom: a}, true
	}
}

// ReadFields reads tokens separated by single spaces until CR/LF or EOF,
// mirroring common/read.go's ReadFields in the v1 client this is adapted
// from.
func (d *decoder) ReadFields() ([]Token, bool) {
	var fields []Token
	for {
		if d.eof() {
			return fields, true
		}
		if b, _ := d.peekByte(); b == '\r' || b == '\n' {
			return fields, true
		}
		tok, ok := d.ReadToken()
		if !ok {
			return fields, false
		}
		fields = append(fields, tok)
		if !d.SP() {
			return fields, true
		}
	}
}
