// Package utf7 implements the modified UTF-7 encoding RFC 3501 §5.1.3
// mandates for IMAP mailbox names: a Unicode string transmitted using only
// printable US-ASCII, with non-ASCII runs shifted into a modified Base64
// alphabet ('/' replaced by ',', no padding) introduced by '&' and closed
// by '-'.
//
// The original utf7 package this was adapted from only carried the shared
// constants (min/max self-representing range, the replacement rune, the
// modified Base64 alphabet) with no actual Encoding implementation, though
// its own test file (decoder_test.go) already assumed one shaped like
// golang.org/x/text/encoding.Encoding (Encoding.NewDecoder().String(...)).
// This file supplies that missing implementation, built directly against
// RFC 3501 rather than against any prior reference behavior.
package utf7

import (
	"encoding/base64"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const (
	min  = 0x20 // Minimum self-representing UTF-7 value
	max  = 0x7E // Maximum self-representing UTF-7 value
	repl = '�'
)

var alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+,"
var b64 = base64.NewEncoding(alphabet).WithPadding(base64.NoPadding)
var b64Padded = base64.NewEncoding(alphabet)

// Encoding is modified UTF-7, usable anywhere an encoding.Encoding is
// expected (wire.encoder.Mailbox uses it directly).
var Encoding encoding.Encoding = utf7Encoding{}

type utf7Encoding struct{}

func (utf7Encoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: &decoder{}}
}

func (utf7Encoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: &encoder{}}
}

// selfRepresenting reports whether r is sent as itself (printable ASCII
// other than '&', which must be escaped as "&-" since it introduces a
// shift sequence).
func selfRepresenting(r rune) bool {
	return r >= min && r <= max && r != '&'
}

type decoder struct{}

func (*decoder) Reset() {}

// Transform decodes modified UTF-7 bytes from src into UTF-8 bytes in dst.
func (*decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		b := src[nSrc]

		if b != '&' {
			if b < min || b > max {
				err = errInvalidUTF7
				return
			}
			if nDst >= len(dst) {
				err = transform.ErrShortDst
				return
			}
			dst[nDst] = b
			nDst++
			nSrc++
			continue
		}

		// '&': either the escape "&-" for a literal '&', or the start of
		// a shifted Base64 run, which must be terminated by '-'.
		j := nSrc + 1
		for j < len(src) && isB64Char(src[j]) {
			j++
		}
		if j == len(src) && !atEOF {
			// The run might continue in the next chunk; ask for more.
			err = transform.ErrShortSrc
			return
		}

		if j == nSrc+1 {
			// No Base64 chars at all: either "&-" (literal '&') or a bare
			// '&' immediately followed by something else entirely.
			if j < len(src) && src[j] == '-' {
				if nDst >= len(dst) {
					err = transform.ErrShortDst
					return
				}
				dst[nDst] = '&'
				nDst++
				nSrc = j + 1
				continue
			}
			err = errInvalidUTF7
			return
		}
		if j == len(src) || src[j] != '-' {
			// Unterminated shift sequence.
			err = errInvalidUTF7
			return
		}

		units, decErr := decodeB64Units(src[nSrc+1 : j])
		if decErr != nil {
			err = decErr
			return
		}
		runes := utf16.Decode(units)
		buf := make([]byte, 0, len(runes)*4)
		for _, r := range runes {
			buf = utf8.AppendRune(buf, r)
		}
		if nDst+len(buf) > len(dst) {
			err = transform.ErrShortDst
			return
		}
		copy(dst[nDst:], buf)
		nDst += len(buf)

		nSrc = j + 1
	}
	return
}

func isB64Char(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '+' || b == ',':
		return true
	}
	return false
}

// decodeB64Units decodes a run of modified-Base64 characters (no padding)
// into UTF-16 code units.
func decodeB64Units(b []byte) ([]uint16, error) {
	padded := make([]byte, len(b), len(b)+3)
	copy(padded, b)
	for len(padded)%4 != 0 {
		padded = append(padded, '=')
	}
	raw := make([]byte, b64Padded.DecodedLen(len(padded)))
	n, err := b64Padded.Decode(raw, padded)
	if err != nil {
		return nil, errInvalidUTF7
	}
	raw = raw[:n]
	if len(raw)%2 != 0 {
		return nil, errInvalidUTF7
	}
	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}
	return units, nil
}

type encoder struct{}

func (*encoder) Reset() {}

// Transform encodes UTF-8 bytes from src into modified UTF-7 bytes in dst.
func (*encoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size <= 1 {
			if !atEOF && size == 0 {
				err = transform.ErrShortSrc
				return
			}
			r, size = repl, 1
		}

		if selfRepresenting(r) {
			if nDst >= len(dst) {
				err = transform.ErrShortDst
				return
			}
			dst[nDst] = byte(r)
			nDst++
			nSrc += size
			continue
		}

		if r == '&' {
			if nDst+2 > len(dst) {
				err = transform.ErrShortDst
				return
			}
			dst[nDst], dst[nDst+1] = '&', '-'
			nDst += 2
			nSrc += size
			continue
		}

		// Collect a maximal run of runes that all need shifting, so
		// adjacent non-ASCII characters share one "&...-" sequence
		// instead of each getting their own.
		var units []uint16
		runLen := 0
		for nSrc+runLen < len(src) {
			rr, sz := utf8.DecodeRune(src[nSrc+runLen:])
			if rr == utf8.RuneError && sz <= 1 {
				if !atEOF && sz == 0 {
					break
				}
				rr, sz = repl, 1
			}
			if selfRepresenting(rr) || rr == '&' {
				break
			}
			units = append(units, utf16.Encode([]rune{rr})...)
			runLen += sz
		}

		encoded := b64.EncodeToString(unitsToBytes(units))
		need := 1 + len(encoded) + 1
		if nDst+need > len(dst) {
			err = transform.ErrShortDst
			return
		}
		dst[nDst] = '&'
		copy(dst[nDst+1:], encoded)
		dst[nDst+1+len(encoded)] = '-'
		nDst += need
		nSrc += runLen
	}
	return
}

func unitsToBytes(units []uint16) []byte {
	b := make([]byte, len(units)*2)
	for i, u := range units {
		b[2*i] = byte(u >> 8)
		b[2*i+1] = byte(u)
	}
	return b
}

type utf7Error string

func (e utf7Error) Error() string { return string(e) }

const errInvalidUTF7 = utf7Error("utf7: invalid modified UTF-7 sequence")
