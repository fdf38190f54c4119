package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrToken(name, adl, mailbox, host string) Token {
	item := func(s string) Token {
		if s == "" {
			return Token{Kind: TokenNil}
		}
		return Token{Kind: TokenString, Str: s}
	}
	return Token{Kind: TokenList, Items: []Token{
		item(name), item(adl), item(mailbox), item(host),
	}}
}

func TestParseEnvelopeFullFields(t *testing.T) {
	items := []Token{
		{Kind: TokenString, Str: "Wed, 17 Jul 1996 02:23:25 -0700 (PDT)"},
		{Kind: TokenString, Str: "IMAP4rev1 WG mtg summary and minutes"},
		{Kind: TokenList, Items: []Token{addrToken("Terry Gray", "", "gray", "cac.washington.edu")}},
		{Kind: TokenList, Items: []Token{addrToken("Terry Gray", "", "gray", "cac.washington.edu")}},
		{Kind: TokenList, Items: []Token{addrToken("Terry Gray", "", "gray", "cac.washington.edu")}},
		{Kind: TokenList, Items: []Token{addrToken("", "", "imap", "cac.washington.edu")}},
		{Kind: TokenNil},
		{Kind: TokenNil},
		{Kind: TokenNil},
		{Kind: TokenString, Str: "<B27397-0100000@cac.washington.edu>"},
	}

	env, err := ParseEnvelope(items)
	require.NoError(t, err)
	assert.Equal(t, "IMAP4rev1 WG mtg summary and minutes", env.Subject)
	assert.Equal(t, "<B27397-0100000@cac.washington.edu>", env.MessageID)
	assert.Empty(t, env.InReplyTo)
	require.Len(t, env.From, 1)
	assert.Equal(t, Address{Name: "Terry Gray", Mailbox: "gray", Host: "cac.washington.edu"}, env.From[0])
	require.Len(t, env.To, 1)
	assert.Equal(t, "imap", env.To[0].Mailbox)
	assert.False(t, env.Date.IsZero())
	assert.Equal(t, 1996, env.Date.Year())
	assert.Equal(t, 2, env.Date.Hour())
}

func TestParseEnvelopeNilDateAndAddresses(t *testing.T) {
	items := []Token{
		{Kind: TokenNil},
		{Kind: TokenNil},
		{Kind: TokenNil}, {Kind: TokenNil}, {Kind: TokenNil},
		{Kind: TokenNil}, {Kind: TokenNil}, {Kind: TokenNil},
		{Kind: TokenNil},
		{Kind: TokenNil},
	}
	env, err := ParseEnvelope(items)
	require.NoError(t, err)
	assert.True(t, env.Date.IsZero())
	assert.Nil(t, env.From)
	assert.Empty(t, env.Subject)
}

func TestParseEnvelopeWrongFieldCount(t *testing.T) {
	_, err := ParseEnvelope([]Token{{Kind: TokenNil}})
	assert.Error(t, err)
}
