package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Grounded on command_test.go / response_test.go's table-driven assertion
// style (testify is used instead, per go.mod).
//
// Parse's contract stops at tag/raw-command/raw-attrs (see the Parser doc
// comment): these tests check the raw tokens it hands back, not the
// Nr/Code/CodeArg/HumanReadable splitting imapcore/dispatch.go does on top.

func TestParseTaggedOK(t *testing.T) {
	resp, err := DefaultParser{}.Parse("a1 OK LOGIN completed")
	require.NoError(t, err)
	assert.Equal(t, "a1", resp.Tag)
	assert.Equal(t, "OK", resp.Command)
	require.Len(t, resp.Attrs, 1)
	assert.Equal(t, TokenString, resp.Attrs[0].Kind)
	assert.Equal(t, "LOGIN completed", resp.Attrs[0].Str)
	assert.True(t, resp.IsTagged())
}

func TestParseUntaggedNumericLeavesCommandRaw(t *testing.T) {
	resp, err := DefaultParser{}.Parse("* 17 EXISTS")
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Tag)
	assert.Equal(t, "17", resp.Command)
	assert.Nil(t, resp.Nr)
	require.Len(t, resp.Attrs, 1)
	assert.True(t, resp.Attrs[0].IsAtom("EXISTS"))
	assert.False(t, resp.IsTagged())
}

func TestParseUntaggedAttrs(t *testing.T) {
	resp, err := DefaultParser{}.Parse("* CAPABILITY IMAP4rev1 AUTH=PLAIN")
	require.NoError(t, err)
	assert.Equal(t, "CAPABILITY", resp.Command)
	require.Len(t, resp.Attrs, 2)
	assert.True(t, resp.Attrs[0].IsAtom("IMAP4rev1"))
	assert.True(t, resp.Attrs[1].IsAtom("AUTH=PLAIN"))
}

func TestParseResponseCodeWithArgLeftRaw(t *testing.T) {
	resp, err := DefaultParser{}.Parse("a2 NO [ALREADYEXISTS] Mailbox already exists")
	require.NoError(t, err)
	assert.Equal(t, "NO", resp.Command)
	assert.Equal(t, "", resp.Code, "Parse must not interpret the response code; that's dispatch's job")
	require.Len(t, resp.Attrs, 2)
	require.Equal(t, TokenSection, resp.Attrs[0].Kind)
	require.Len(t, resp.Attrs[0].Items, 1)
	assert.True(t, resp.Attrs[0].Items[0].IsAtom("ALREADYEXISTS"))
	assert.Equal(t, TokenString, resp.Attrs[1].Kind)
	assert.Equal(t, "Mailbox already exists", resp.Attrs[1].Str)
}

func TestParseResponseCodeWithListArgLeftRaw(t *testing.T) {
	resp, err := DefaultParser{}.Parse("* OK [CAPABILITY IMAP4rev1 AUTH=PLAIN] greeting")
	require.NoError(t, err)
	require.Len(t, resp.Attrs, 2)
	section := resp.Attrs[0]
	require.Equal(t, TokenSection, section.Kind)
	require.Len(t, section.Items, 3)
	assert.True(t, section.Items[0].IsAtom("CAPABILITY"))
	assert.Equal(t, "greeting", resp.Attrs[1].Str)
}

func TestParseMultiWordHumanReadableNotTruncated(t *testing.T) {
	// Regression: the trailing text must keep every word, not just the
	// last one tokenized by ReadFields.
	resp, err := DefaultParser{}.Parse("a4 NO bad creds supplied")
	require.NoError(t, err)
	require.Len(t, resp.Attrs, 1)
	assert.Equal(t, "bad creds supplied", resp.Attrs[0].Str)
}

func TestParseEmptyRespText(t *testing.T) {
	resp, err := DefaultParser{}.Parse("a5 OK")
	require.NoError(t, err)
	assert.Empty(t, resp.Attrs)
}

func TestParseFetchAttrsWithList(t *testing.T) {
	resp, err := DefaultParser{}.Parse(`* 3 FETCH (FLAGS (\Seen \Answered) UID 99)`)
	require.NoError(t, err)
	assert.Equal(t, "3", resp.Command)
	require.Len(t, resp.Attrs, 2)
	assert.True(t, resp.Attrs[0].IsAtom("FETCH"))
	assert.Equal(t, TokenList, resp.Attrs[1].Kind)
	items := resp.Attrs[1].Items
	require.Len(t, items, 4)
	assert.True(t, items[0].IsAtom("FLAGS"))
	assert.Equal(t, TokenList, items[1].Kind)
	require.Len(t, items[1].Items, 2)
	assert.True(t, items[1].Items[0].IsAtom(`\Seen`))
	assert.True(t, items[2].IsAtom("UID"))
	assert.Equal(t, int64(99), items[3].Number)
}

func TestParseFetchLiteralBody(t *testing.T) {
	resp, err := DefaultParser{}.Parse("* 1 FETCH (BODY[] {5}\r\nhello)")
	require.NoError(t, err)
	require.Len(t, resp.Attrs, 2)
	items := resp.Attrs[1].Items
	require.Len(t, items, 2)
	assert.Equal(t, TokenSection, items[0].Kind)
	assert.Equal(t, TokenString, items[1].Kind)
	assert.Equal(t, "hello", items[1].Str)
}

func TestParseNonUTF8RespTextFallsBackToLatin1(t *testing.T) {
	resp, err := DefaultParser{}.Parse("a6 NO " + string([]byte{0xE9}) + "tat invalide")
	require.NoError(t, err)
	require.Len(t, resp.Attrs, 1)
	assert.Equal(t, "état invalide", resp.Attrs[0].Str)
}

func TestParseContinuationIsNotAResponse(t *testing.T) {
	// Continuation requests ("+") are recognized upstream of Parse, on the
	// raw frame text, since they don't share resp/resp-cond-state shape;
	// Parse is never called with one. See imapcore/dispatch.go.
	_, err := DefaultParser{}.Parse("+ ")
	assert.Error(t, err)
}
