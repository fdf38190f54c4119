package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCommand(t *testing.T) {
	chunks, err := DefaultCompiler{}.Compile("a1", List("", "*"), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 LIST \"\" \"*\"\r\n", chunks[0])
	assert.Equal(t, []string{"LIST"}, List("", "*").AcceptUntagged)
}

func TestStatusCommand(t *testing.T) {
	chunks, err := DefaultCompiler{}.Compile("a1", Status("INBOX", []string{"MESSAGES", "UNSEEN"}), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 STATUS INBOX (MESSAGES UNSEEN)\r\n", chunks[0])
}

func TestStoreCommand(t *testing.T) {
	var seq NumSet
	seq.AddNum(1)
	chunks, err := DefaultCompiler{}.Compile("a1", Store(seq, "+FLAGS", []string{"\\Deleted"}), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 STORE 1 +FLAGS (\\Deleted)\r\n", chunks[0])
}

func TestCopyCommand(t *testing.T) {
	var seq NumSet
	seq.AddRange(1, 3)
	chunks, err := DefaultCompiler{}.Compile("a1", Copy(seq, "Archive"), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 COPY 1:3 \"Archive\"\r\n", chunks[0])
}

func TestStartTLSAndCompressAreArgless(t *testing.T) {
	chunks, err := DefaultCompiler{}.Compile("a1", StartTLS(), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 STARTTLS\r\n", chunks[0])

	chunks, err = DefaultCompiler{}.Compile("a2", Compress("DEFLATE"), true, false)
	require.NoError(t, err)
	assert.Equal(t, "a2 COMPRESS DEFLATE\r\n", chunks[0])
}

func TestUIDFetchUsesCompoundName(t *testing.T) {
	var uids NumSet
	uids.AddNum(42)
	cmd := UIDFetch(uids, "UID FLAGS")
	assert.Equal(t, "UID FETCH", cmd.Name)
	chunks, err := DefaultCompiler{}.Compile("a1", cmd, true, false)
	require.NoError(t, err)
	assert.Equal(t, "a1 UID FETCH 42 UID FLAGS\r\n", chunks[0])
}
