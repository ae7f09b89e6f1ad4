package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/kgchat/llm"
	"github.com/zero-day-ai/kgchat/memory"
)

// TestInMemoryStore_RoundTrip verifies that appended turns come back in
// order, oldest first.
func TestInMemoryStore_RoundTrip(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	ctx := context.Background()

	err := store.Append(ctx, "s1",
		llm.Turn{Role: llm.RoleUser, Content: "who are the domain admins"},
		llm.Turn{Role: llm.RoleAssistant, Content: "the IT ADMINS group"},
	)
	require.NoError(t, err)

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, llm.RoleUser, history[0].Role)
	assert.Equal(t, "who are the domain admins", history[0].Content)
	assert.Equal(t, llm.RoleAssistant, history[1].Role)
}

// TestInMemoryStore_UnknownSessionIsEmpty verifies that reading an unknown
// session yields an empty history, not an error.
func TestInMemoryStore_UnknownSessionIsEmpty(t *testing.T) {
	store := memory.NewInMemoryStore(0)

	history, err := store.History(context.Background(), "nope")

	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestInMemoryStore_CapDiscardsOldest verifies the retention cap keeps the
// most recent turns.
func TestInMemoryStore_CapDiscardsOldest(t *testing.T) {
	store := memory.NewInMemoryStore(3)
	ctx := context.Background()

	for _, content := range []string{"one", "two", "three", "four", "five"} {
		require.NoError(t, store.Append(ctx, "s1", llm.Turn{Role: llm.RoleUser, Content: content}))
	}

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "three", history[0].Content)
	assert.Equal(t, "five", history[2].Content)
}

// TestInMemoryStore_Clear verifies that clearing removes the session and
// clearing twice is a no-op.
func TestInMemoryStore_Clear(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", llm.Turn{Role: llm.RoleUser, Content: "hello"}))
	require.NoError(t, store.Clear(ctx, "s1"))
	require.NoError(t, store.Clear(ctx, "s1"))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}

// TestInMemoryStore_EmptySessionID verifies the invalid-session sentinel.
func TestInMemoryStore_EmptySessionID(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	ctx := context.Background()

	_, err := store.History(ctx, "")
	assert.ErrorIs(t, err, memory.ErrInvalidSession)

	err = store.Append(ctx, "", llm.Turn{Role: llm.RoleUser, Content: "x"})
	assert.ErrorIs(t, err, memory.ErrInvalidSession)

	assert.ErrorIs(t, store.Clear(ctx, ""), memory.ErrInvalidSession)
}

// TestInMemoryStore_HistoryIsCopy verifies callers cannot mutate the stored
// history through the returned slice.
func TestInMemoryStore_HistoryIsCopy(t *testing.T) {
	store := memory.NewInMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "s1", llm.Turn{Role: llm.RoleUser, Content: "original"}))

	history, err := store.History(ctx, "s1")
	require.NoError(t, err)
	history[0].Content = "mutated"

	fresh, err := store.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "original", fresh[0].Content)
}
