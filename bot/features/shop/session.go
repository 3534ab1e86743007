package shop

import (
	"sync"
	"time"
)

// purchaseStage tracks how far a purchase conversation has progressed
type purchaseStage int

const (
	stageOffered purchaseStage = iota // item picked, waiting for payment method
	stageCompleted
)

// purchaseSession stores the in-flight purchase state for a user. Purchases
// are advisory: no currency moves until an operator settles them out of band.
type purchaseSession struct {
	UserID    int64
	ItemID    string
	Stage     purchaseStage
	StartedAt time.Time
}

var (
	purchaseSessions   = make(map[int64]*purchaseSession)
	purchaseSessionsMu sync.RWMutex
)

// cleanupSessions removes sessions older than the given timeout
func cleanupSessions(timeout time.Duration) {
	purchaseSessionsMu.Lock()
	defer purchaseSessionsMu.Unlock()

	now := time.Now()
	for userID, session := range purchaseSessions {
		if now.Sub(session.StartedAt) > timeout {
			delete(purchaseSessions, userID)
		}
	}
}

// getSession retrieves the purchase session for a user, treating timed-out
// sessions as absent
func getSession(userID int64, timeout time.Duration) *purchaseSession {
	purchaseSessionsMu.RLock()
	defer purchaseSessionsMu.RUnlock()

	session, ok := purchaseSessions[userID]
	if !ok || time.Since(session.StartedAt) > timeout {
		return nil
	}
	return session
}

// createSession starts a purchase session, replacing any previous one
func createSession(userID int64, itemID string) {
	purchaseSessionsMu.Lock()
	defer purchaseSessionsMu.Unlock()
	purchaseSessions[userID] = &purchaseSession{
		UserID:    userID,
		ItemID:    itemID,
		Stage:     stageOffered,
		StartedAt: time.Now(),
	}
}

// completeSession marks a session finished. The entry stays around until the
// timeout cleanup so repeat button clicks on the settled message can be told
// apart from an expired purchase.
func completeSession(userID int64) {
	purchaseSessionsMu.Lock()
	defer purchaseSessionsMu.Unlock()
	if session, ok := purchaseSessions[userID]; ok {
		session.Stage = stageCompleted
	}
}
