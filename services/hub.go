package services

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"modernmen-backend/utils"
)

const (
	EventAppointmentCreated      = "appointment.created"
	EventAppointmentStatus       = "appointment.status"
	EventAppointmentRescheduling = "appointment.requires_rescheduling"
	EventAppointmentUpdated      = "appointment.updated"
)

// Publisher pushes realtime events to a tenant's staff.
type Publisher interface {
	Publish(tenantID uuid.UUID, event string, payload any)
}

// Hub keeps the open staff websocket connections, grouped by tenant.
type Hub struct {
	mu       sync.RWMutex
	byTenant map[uuid.UUID]map[uuid.UUID]*wsConn
}

func NewHub() *Hub {
	return &Hub{byTenant: make(map[uuid.UUID]map[uuid.UUID]*wsConn)}
}

// wsConn wraps a websocket connection with a write mutex to serialize writes.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Register replaces any previous connection of the same user.
func (h *Hub) Register(tenantID, userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.byTenant[tenantID]
	if !ok {
		conns = make(map[uuid.UUID]*wsConn)
		h.byTenant[tenantID] = conns
	}
	if old, ok := conns[userID]; ok {
		old.conn.Close()
	}
	conns[userID] = &wsConn{conn: conn}
}

// Unregister closes conn and forgets it unless a newer connection of the
// same user has already replaced it.
func (h *Hub) Unregister(tenantID, userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conn.Close()
	conns := h.byTenant[tenantID]
	if c, ok := conns[userID]; ok && c.conn == conn {
		delete(conns, userID)
	}
	if len(conns) == 0 {
		delete(h.byTenant, tenantID)
	}
}

func (h *Hub) Connections(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byTenant[tenantID])
}

// Publish writes the event to every connection of the tenant. Write errors
// are logged and the connection is left for the read loop to drop.
func (h *Hub) Publish(tenantID uuid.UUID, event string, payload any) {
	h.mu.RLock()
	targets := make(map[uuid.UUID]*wsConn, len(h.byTenant[tenantID]))
	for id, c := range h.byTenant[tenantID] {
		targets[id] = c
	}
	h.mu.RUnlock()

	msg := map[string]any{"event": event, "data": payload}
	for userID, wc := range targets {
		wc.mu.Lock()
		err := wc.conn.WriteJSON(msg)
		wc.mu.Unlock()
		if err != nil {
			utils.Log.WithFields(logrus.Fields{
				"tenant_id": tenantID.String(),
				"user_id":   userID.String(),
				"event":     event,
			}).WithError(err).Warn("ws write failed")
		}
	}
}
