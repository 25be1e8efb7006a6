package ws

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lead-backend/internal/auth"
	"lead-backend/internal/config"
	"lead-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTManager() *auth.JWTManager {
	cfg := &config.Config{}
	cfg.JWT.Secret = "hub-test-secret"
	cfg.JWT.ExpirationHours = 1
	cfg.JWT.Issuer = "lead-backend"
	return auth.NewJWTManager(cfg)
}

func TestNotifyNewLeadQueuesTargetedEvent(t *testing.T) {
	hub := NewHub(testJWTManager())

	hub.NotifyNewLead(42, &models.Lead{
		ID:             7,
		ContactName:    "Ravi Kumar",
		Phone:          "+919876543210",
		InitialMessage: "Looking for a 2BHK",
	})

	te := <-hub.queue
	assert.Equal(t, 42, te.userID)
	assert.Equal(t, "new_lead", te.event.Type)
	payload, ok := te.event.Lead.(LeadPayload)
	require.True(t, ok)
	assert.Equal(t, 7, payload.ID)
	assert.Equal(t, "Ravi Kumar", payload.ContactName)
	assert.Equal(t, "+919876543210", payload.Phone)
	assert.Equal(t, "Looking for a 2BHK", payload.Message)
}

func TestNotifyNewLeadDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(testJWTManager())

	// Nothing drains the queue; once the buffer is full further
	// notifications must drop instead of blocking.
	for i := 0; i < cap(hub.queue)+10; i++ {
		hub.NotifyNewLead(1, &models.Lead{ID: i})
	}

	assert.Equal(t, cap(hub.queue), len(hub.queue))
}

func TestHandleWSRequiresToken(t *testing.T) {
	hub := NewHub(testJWTManager())

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	rec := httptest.NewRecorder()
	hub.HandleWS(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleWSRejectsBadToken(t *testing.T) {
	hub := NewHub(testJWTManager())

	req := httptest.NewRequest(http.MethodGet, "/ws?token=not-a-jwt", nil)
	rec := httptest.NewRecorder()
	hub.HandleWS(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestRegistryTracksConnectionsPerUser(t *testing.T) {
	hub := NewHub(testJWTManager())
	assert.Equal(t, 0, hub.ClientCount())

	// Two sockets for one user, one for another
	a1, a2, b1 := &websocket.Conn{}, &websocket.Conn{}, &websocket.Conn{}
	hub.register(1, a1)
	hub.register(1, a2)
	hub.register(2, b1)
	assert.Equal(t, 3, hub.ClientCount())

	hub.clientsMux.Lock()
	hub.removeLocked(1, a1)
	hub.removeLocked(2, b1)
	hub.clientsMux.Unlock()
	assert.Equal(t, 1, hub.ClientCount())

	// Removing the last socket drops the user entry entirely
	hub.clientsMux.Lock()
	hub.removeLocked(1, a2)
	hub.clientsMux.Unlock()
	assert.Empty(t, hub.clients)
}
