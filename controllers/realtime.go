package controllers

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"modernmen-backend/services"
	"modernmen-backend/utils"
)

const wsReadTimeout = 60 * time.Second

// RealtimeController upgrades staff sessions onto the calendar feed.
type RealtimeController struct {
	hub      *services.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts upgrades from the given origins. An empty
// list accepts any origin.
func NewRealtimeController(hub *services.Hub, origins []string) *RealtimeController {
	return &RealtimeController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(origins) == 0 || slices.Contains(origins, origin)
			},
		},
	}
}

func (rc *RealtimeController) Connect(c *gin.Context) {
	session := utils.MustSession(c)
	if !session.IsStaff() {
		utils.RespondWithCode(c, utils.CodeForbidden, "Only staff can subscribe to live updates", nil)
		return
	}

	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.LoggerFor(c).WithError(err).Warn("websocket upgrade failed")
		return
	}
	rc.hub.Register(session.TenantID, session.UserID, conn)
	defer rc.hub.Unregister(session.TenantID, session.UserID, conn)

	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})
	// Clients only send keepalives; the loop ends when the socket closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	}
}
