package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/room4-2/openlive/config"
)

func newTestManager() *Manager {
	return &Manager{
		sessions: make(map[string]*ClientSession),
		config: &config.Config{
			MaxSessions:    10,
			SessionTimeout: time.Minute,
		},
	}
}

func TestManagerRemovesClosedSessions(t *testing.T) {
	sm := newTestManager()

	cs := newTestSession("aaaabbbb-test")
	sm.sessions[cs.ID] = cs
	go sm.watchSession(cs.ID, cs)

	require.Equal(t, 1, sm.GetActiveSessionCount())

	// Closing the session (client disconnect, Gemini error) must free its
	// registry slot without waiting for the inactivity cleanup
	cs.Close()
	require.Eventually(t, func() bool {
		return sm.GetActiveSessionCount() == 0
	}, 2*time.Second, 10*time.Millisecond)

	_, exists := sm.GetSession(cs.ID)
	require.False(t, exists)
}

func TestManagerRemoveSessionIsIdempotent(t *testing.T) {
	sm := newTestManager()

	cs := newTestSession("ccccdddd-test")
	sm.sessions[cs.ID] = cs

	ctx := context.Background()
	require.NoError(t, sm.RemoveSession(ctx, cs.ID))
	require.NoError(t, sm.RemoveSession(ctx, cs.ID))
	require.Equal(t, 0, sm.GetActiveSessionCount())
	require.True(t, cs.IsClosed())
}
