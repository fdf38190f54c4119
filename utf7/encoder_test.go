package utf7_test

import (
	"testing"

	"github.com/mailwire/imapcore/utf7"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeASCIIPassesThrough(t *testing.T) {
	enc := utf7.Encoding.NewEncoder()
	out, err := enc.String("INBOX/Archive")
	require.NoError(t, err)
	assert.Equal(t, "INBOX/Archive", out)
}

func TestEncodeEscapesAmpersand(t *testing.T) {
	enc := utf7.Encoding.NewEncoder()
	out, err := enc.String("Q&A")
	require.NoError(t, err)
	assert.Equal(t, "Q&-A", out)
}

func TestEncodeRoundTripsNonASCII(t *testing.T) {
	enc := utf7.Encoding.NewEncoder()
	dec := utf7.Encoding.NewDecoder()

	for _, name := range []string{"Juén", "日本語", "Müll", "&weird&"} {
		wire, err := enc.String(name)
		require.NoError(t, err, name)

		back, err := dec.String(wire)
		require.NoError(t, err, "decoding %q (from %q)", wire, name)
		assert.Equal(t, name, back)
	}
}
