package ws

import (
	"log"
	"net/http"
	"sync"

	"lead-backend/internal/auth"
	"lead-backend/internal/models"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event is one realtime notification pushed over a socket
type Event struct {
	Type string      `json:"type"`
	Lead interface{} `json:"lead,omitempty"`
}

// LeadPayload is the trimmed lead shape sent over the socket
type LeadPayload struct {
	ID          int    `json:"id"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
}

type targetedEvent struct {
	userID int
	event  Event
}

// Hub is a registry of live connections keyed by user id. Events are
// delivered only to the sockets of the user they target.
type Hub struct {
	jwtManager *auth.JWTManager
	clients    map[int]map[*websocket.Conn]bool
	clientsMux sync.Mutex
	queue      chan targetedEvent
}

func NewHub(jwtManager *auth.JWTManager) *Hub {
	return &Hub{
		jwtManager: jwtManager,
		clients:    make(map[int]map[*websocket.Conn]bool),
		queue:      make(chan targetedEvent, 64),
	}
}

// Run drains the event queue. Start it once in a goroutine.
func (h *Hub) Run() {
	for te := range h.queue {
		h.clientsMux.Lock()
		for conn := range h.clients[te.userID] {
			if err := conn.WriteJSON(te.event); err != nil {
				conn.Close()
				h.removeLocked(te.userID, conn)
			}
		}
		h.clientsMux.Unlock()
	}
}

// NotifyNewLead pushes a new_lead event to the assigned broker's
// connections. Non-blocking: if the buffer is full the event is dropped.
func (h *Hub) NotifyNewLead(brokerUserID int, lead *models.Lead) {
	te := targetedEvent{
		userID: brokerUserID,
		event: Event{
			Type: "new_lead",
			Lead: LeadPayload{
				ID:          lead.ID,
				ContactName: lead.ContactName,
				Phone:       lead.Phone,
				Message:     lead.InitialMessage,
			},
		},
	}

	select {
	case h.queue <- te:
	default:
		log.Printf("[WS] Event buffer full, dropping new_lead event for lead %d", lead.ID)
	}
}

// HandleWS upgrades the connection after validating the JWT passed as
// a token query parameter (browsers cannot set headers on websockets)
// and registers it under the token's user id
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}
	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	h.register(claims.UserID, conn)

	// Reader loop just detects disconnects; clients don't send anything
	go func() {
		defer func() {
			h.clientsMux.Lock()
			h.removeLocked(claims.UserID, conn)
			h.clientsMux.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) register(userID int, conn *websocket.Conn) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

// removeLocked must be called with clientsMux held
func (h *Hub) removeLocked(userID int, conn *websocket.Conn) {
	delete(h.clients[userID], conn)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// ClientCount returns the number of connected sockets
func (h *Hub) ClientCount() int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}
