package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/paisapal/paisapal-go/internal/chat"
)

func testMessage(role chat.Role, text string) chat.Message {
	msg := chat.NewMessage(role, text)
	msg.Timestamp = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	return msg
}

func TestSaveAndList(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "history.db"))
	defer store.Close()

	store.Save("session-1", testMessage(chat.RoleUser, "set a budget"))
	store.Save("session-1", testMessage(chat.RoleAssistant, "done"))
	store.Save("session-2", testMessage(chat.RoleUser, "other session"))

	records := store.List("session-1")
	require.Len(t, records, 2)
	require.Equal(t, "set a budget", records[0].Content)
	require.Equal(t, string(chat.RoleUser), records[0].Role)
	require.Equal(t, "done", records[1].Content)

	require.Len(t, store.List("session-2"), 1)
	require.Empty(t, store.List("session-3"))
}

func TestListSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store := Open(path)
	store.Save("session-1", testMessage(chat.RoleUser, "hello"))
	require.NoError(t, store.Close())

	reopened := Open(path)
	defer reopened.Close()
	records := reopened.List("session-1")
	require.Len(t, records, 1)
	require.Equal(t, "hello", records[0].Content)
}

func TestMemoryFallbackWhenPathUnusable(t *testing.T) {
	// A path inside a directory that doesn't exist makes table setup fail,
	// leaving the store memory-only.
	store := Open(filepath.Join(t.TempDir(), "missing", "nested", "history.db"))
	defer store.Close()

	store.Save("session-1", testMessage(chat.RoleUser, "still recorded"))
	records := store.List("session-1")
	require.Len(t, records, 1)
	require.Equal(t, "still recorded", records[0].Content)
}
