package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkravets/shopcore/internal/store"
)

func newTestSettings(t *testing.T) (*Store, context.Context) {
	t.Helper()

	ctx := context.Background()
	s, err := store.OpenMemory(ctx)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return New(s), ctx
}

func TestDefaults(t *testing.T) {
	st, ctx := newTestSettings(t)

	assert.Equal(t, ThemeSystem, st.ThemeMode(ctx))
	assert.Equal(t, "ru", st.Language(ctx))
	assert.True(t, st.NotificationsEnabled(ctx))
	assert.Empty(t, st.SessionToken(ctx))
	assert.Empty(t, st.SessionUserID(ctx))
}

func TestSetAndGet(t *testing.T) {
	st, ctx := newTestSettings(t)

	require.NoError(t, st.SetThemeMode(ctx, ThemeDark))
	require.NoError(t, st.SetLanguage(ctx, "en"))
	require.NoError(t, st.SetNotificationsEnabled(ctx, false))

	assert.Equal(t, ThemeDark, st.ThemeMode(ctx))
	assert.Equal(t, "en", st.Language(ctx))
	assert.False(t, st.NotificationsEnabled(ctx))
}

func TestOverwrite(t *testing.T) {
	st, ctx := newTestSettings(t)

	require.NoError(t, st.SetThemeMode(ctx, ThemeLight))
	require.NoError(t, st.SetThemeMode(ctx, ThemeDark))
	assert.Equal(t, ThemeDark, st.ThemeMode(ctx))
}

func TestInvalidValuesFallBack(t *testing.T) {
	st, ctx := newTestSettings(t)

	err := st.SetThemeMode(ctx, ThemeMode("neon"))
	require.Error(t, err)
	assert.Equal(t, ThemeSystem, st.ThemeMode(ctx))

	require.Error(t, st.SetLanguage(ctx, ""))

	// A corrupted stored value degrades to the default instead of
	// failing the read.
	require.NoError(t, st.set(ctx, keyNotifications, "not-a-bool"))
	assert.True(t, st.NotificationsEnabled(ctx))

	require.NoError(t, st.set(ctx, keyThemeMode, "weird"))
	assert.Equal(t, ThemeSystem, st.ThemeMode(ctx))
}

func TestSessionRoundTrip(t *testing.T) {
	st, ctx := newTestSettings(t)

	require.NoError(t, st.SetSession(ctx, "user_1", "token-abc"))
	assert.Equal(t, "user_1", st.SessionUserID(ctx))
	assert.Equal(t, "token-abc", st.SessionToken(ctx))

	require.NoError(t, st.ClearSession(ctx))
	assert.Empty(t, st.SessionUserID(ctx))
	assert.Empty(t, st.SessionToken(ctx))
}

func TestWatchLanguage(t *testing.T) {
	st, ctx := newTestSettings(t)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := st.WatchLanguage(watchCtx)
	assert.Equal(t, "ru", <-ch)

	require.NoError(t, st.SetLanguage(ctx, "en"))
	assert.Equal(t, "en", <-ch)
}
