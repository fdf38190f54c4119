package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Adapted from seqset_test.go / internal/imapnum's own table-driven style,
// renamed to exercise NumSet/NumRange.

func TestNumSetParseAndString(t *testing.T) {
	cases := []struct{ in, out string }{
		{"1", "1"},
		{"1,3:5", "1,3:5"},
		{"1:3,5", "1:3,5"},
		{"*", "*"},
		{"5:*", "5:*"},
		{"1:5,3:7", "1:7"}, // overlapping ranges merge
	}
	for _, c := range cases {
		s, err := ParseNumSet(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.out, s.String(), c.in)
	}
}

func TestNumSetAddNumMerges(t *testing.T) {
	var s NumSet
	s.AddNum(1, 2, 3, 10)
	assert.Equal(t, "1:3,10", s.String())
}

func TestNumSetAddRangeReversed(t *testing.T) {
	var s NumSet
	s.AddRange(5, 1)
	assert.Equal(t, "1:5", s.String())
}

func TestNumSetEmptyString(t *testing.T) {
	var s NumSet
	assert.Equal(t, "", s.String())
}

func TestParseNumSetRejectsGarbage(t *testing.T) {
	_, err := ParseNumSet("abc")
	assert.Error(t, err)
}

func TestParseCopyUID(t *testing.T) {
	arg := &Token{Kind: TokenList, Items: []Token{
		{Kind: TokenNumber, Number: 123456},
		{Kind: TokenAtom, Atom: "1:5"},
		{Kind: TokenAtom, Atom: "100:104"},
	}}

	cu, err := ParseCopyUID(arg)
	require.NoError(t, err)
	assert.Equal(t, uint32(123456), cu.UIDValidity)
	assert.Equal(t, "1:5", cu.Source.String())
	assert.Equal(t, "100:104", cu.Dest.String())
}

func TestParseCopyUIDRejectsWrongShape(t *testing.T) {
	_, err := ParseCopyUID(&Token{Kind: TokenList, Items: []Token{{Kind: TokenNumber, Number: 1}}})
	assert.Error(t, err)

	_, err = ParseCopyUID(nil)
	assert.Error(t, err)
}
