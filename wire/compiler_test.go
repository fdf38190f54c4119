package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSimpleCommand(t *testing.T) {
	chunks, err := DefaultCompiler{}.Compile("a1", Noop(), true, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a1 NOOP\r\n", chunks[0])
}

func TestCompileLoginRedactsPassword(t *testing.T) {
	cmd := Login("alice", "hunter2")

	plain, err := DefaultCompiler{}.Compile("a1", cmd, true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 LOGIN \"alice\" \"hunter2\"\r\n", plain[0])

	redacted, err := DefaultCompiler{}.Compile("a1", cmd, true, true)
	require.NoError(t, err)
	assert.Equal(t, "a1 LOGIN \"alice\" \"****\"\r\n", redacted[0])
}

func TestCompileAppendSplitsAtLiteral(t *testing.T) {
	cmd := AppendLiteral("INBOX", []string{"\\Seen"}, []byte("hi"))

	chunks, err := DefaultCompiler{}.Compile("a1", cmd, true, false)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a1 APPEND INBOX (\\Seen) {2}\r\n", chunks[0])
	assert.Equal(t, "hi\r\n", chunks[1])
}

func TestCompileAppendJoinedWhenSplitDisabled(t *testing.T) {
	cmd := AppendLiteral("INBOX", nil, []byte("hi"))

	chunks, err := DefaultCompiler{}.Compile("a1", cmd, false, false)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a1 APPEND INBOX {2}\r\nhi\r\n", chunks[0])
}

func TestCompileSelectEncodesMailboxName(t *testing.T) {
	chunks, err := DefaultCompiler{}.Compile("a1", Select("INBOX", false), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 SELECT INBOX\r\n", chunks[0])
}

func TestCompileFetchWithSeqSet(t *testing.T) {
	var seq NumSet
	seq.AddRange(1, 5)
	chunks, err := DefaultCompiler{}.Compile("a1", Fetch(seq, "FAST"), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 FETCH 1:5 FAST\r\n", chunks[0])
}
