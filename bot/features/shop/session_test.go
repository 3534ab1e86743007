package shop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPurchaseSessionLifecycle(t *testing.T) {
	timeout := time.Minute

	createSession(42, "item-a")

	session := getSession(42, timeout)
	require.NotNil(t, session)
	assert.Equal(t, "item-a", session.ItemID)
	assert.Equal(t, stageOffered, session.Stage)

	// completion keeps the session but moves it past the offered stage
	completeSession(42)
	session = getSession(42, timeout)
	require.NotNil(t, session)
	assert.Equal(t, stageCompleted, session.Stage)

	// picking another item restarts the conversation
	createSession(42, "item-b")
	session = getSession(42, timeout)
	require.NotNil(t, session)
	assert.Equal(t, "item-b", session.ItemID)
	assert.Equal(t, stageOffered, session.Stage)

	cleanupSessions(0)
	assert.Nil(t, getSession(42, timeout))
}

func TestPurchaseSessionTimeout(t *testing.T) {
	createSession(43, "item-a")

	purchaseSessionsMu.Lock()
	purchaseSessions[43].StartedAt = time.Now().Add(-2 * time.Minute)
	purchaseSessionsMu.Unlock()

	assert.Nil(t, getSession(43, time.Minute))

	// completing an unknown or expired user is a no-op
	completeSession(44)
	assert.Nil(t, getSession(44, time.Minute))
}
