package wire

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/mailwire/imapcore/utf7"
)

// encoder builds one command's wire bytes, splitting the output into
// separate chunks at synchronizing-literal boundaries so the send engine
// can pause for a server continuation between chunks.
//
// Adapted from internal/imapwire/encoder.go, which writes straight to a
// live *bufio.Writer (framing and sending are one step there); here the
// encoder only ever produces an in-memory []string, and the send
// engine (queue.go) owns writing chunks to the transport one at a time.
type encoder struct {
	chunks  []string
	cur     strings.Builder
	literal bool // not set or read by any encoder method
}

func newEncoder() *encoder {
	return &encoder{}
}

func (e *encoder) Atom(s string) *encoder {
	e.cur.WriteString(s)
	return e
}

func (e *encoder) SP() *encoder {
	e.cur.WriteByte(' ')
	return e
}

func (e *encoder) Special(b byte) *encoder {
	e.cur.WriteByte(b)
	return e
}

func (e *encoder) Number(v uint32) *encoder {
	e.cur.WriteString(strconv.FormatUint(uint64(v), 10))
	return e
}

func (e *encoder) Number64(v int64) *encoder {
	e.cur.WriteString(strconv.FormatInt(v, 10))
	return e
}

func (e *encoder) Quoted(s string) *encoder {
	e.cur.Grow(len(s) + 2)
	e.cur.WriteByte('"')
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '"' || ch == '\\' {
			e.cur.WriteByte('\\')
		}
		e.cur.WriteByte(ch)
	}
	e.cur.WriteByte('"')
	return e
}

func validQuoted(s string) bool {
	if len(s) > 4096 {
		return false
	}
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case 0, '\r', '\n':
			return false
		}
		if ch > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// String writes s as a quoted string, or as a (synchronizing) literal when
// it cannot be safely quoted.
func (e *encoder) String(s string) *encoder {
	if validQuoted(s) {
		return e.Quoted(s)
	}
	return e.Literal(s, true)
}

// Literal appends size header "{N}" or "{N+}" and the literal body; for the
// synchronizing form the body starts a new chunk. sync selects whether the {N} form (requiring a server
// continuation) or the RFC 7888 {N+} non-synchronizing form is written.
func (e *encoder) Literal(s string, sync bool) *encoder {
	e.cur.WriteByte('{')
	e.cur.WriteString(strconv.Itoa(len(s)))
	if !sync {
		e.cur.WriteByte('+')
	}
	e.cur.WriteString("}\r\n")

	if sync {
		// End the current chunk here: the send engine must wait for a "+"
		// continuation before the literal body may follow.
		e.chunks = append(e.chunks, e.cur.String())
		e.cur.Reset()
		e.cur.WriteString(s)
	} else {
		e.cur.WriteString(s)
	}
	return e
}

// Mailbox encodes a mailbox name, using modified UTF-7 (RFC 3501 §5.1.3)
// for anything that isn't the case-insensitive name INBOX. Grounded on
// internal/imapwire/encoder.go's Mailbox method.
func (e *encoder) Mailbox(name string) *encoder {
	if strings.EqualFold(name, "INBOX") {
		return e.Atom("INBOX")
	}
	encoded, _ := utf7.Encoding.NewEncoder().String(name)
	return e.String(encoded)
}

// NumSet writes a sequence-set argument.
func (e *encoder) NumSet(s NumSet) *encoder {
	str := s.String()
	if str == "" {
		str = "*"
	}
	return e.Atom(str)
}

// List writes a parenthesized list of n items via f.
func (e *encoder) List(n int, f func(i int)) *encoder {
	e.Special('(')
	for i := 0; i < n; i++ {
		if i > 0 {
			e.SP()
		}
		f(i)
	}
	e.Special(')')
	return e
}

func (e *encoder) NIL() *encoder {
	return e.Atom("NIL")
}

// finish closes out the last chunk and returns the ordered chunk list.
func (e *encoder) finish() []string {
	e.chunks = append(e.chunks, e.cur.String())
	e.cur.Reset()
	return e.chunks
}
