package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubServer registers every upgraded connection for the user named in the
// ?user= query and keeps it open until the test ends.
func hubServer(t *testing.T, hub *Hub, tenant uuid.UUID) (string, <-chan *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	registered := make(chan *websocket.Conn, 4)
	done := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(tenant, uuid.MustParse(r.URL.Query().Get("user")), conn)
		registered <- conn
		<-done
	}))
	t.Cleanup(func() {
		close(done)
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http"), registered
}

func dial(t *testing.T, url string, user uuid.UUID) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?user="+user.String(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPublish(t *testing.T) {
	hub := NewHub()
	tenant, other := uuid.New(), uuid.New()
	url, registered := hubServer(t, hub, tenant)

	client := dial(t, url, uuid.New())
	<-registered
	assert.Equal(t, 1, hub.Connections(tenant))

	hub.Publish(other, EventAppointmentCreated, map[string]string{"id": "ignored"})
	hub.Publish(tenant, EventAppointmentCreated, map[string]string{"id": "abc"})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, client.ReadJSON(&msg))
	assert.Equal(t, EventAppointmentCreated, msg.Event)
	assert.Equal(t, "abc", msg.Data["id"])
}

func TestHubReplaceAndUnregister(t *testing.T) {
	hub := NewHub()
	tenant, user := uuid.New(), uuid.New()
	url, registered := hubServer(t, hub, tenant)

	dial(t, url, user)
	first := <-registered
	dial(t, url, user)
	second := <-registered
	assert.Equal(t, 1, hub.Connections(tenant), "a user keeps one connection")

	// the replaced connection's read loop exits late and must not drop the new one
	hub.Unregister(tenant, user, first)
	assert.Equal(t, 1, hub.Connections(tenant))

	hub.Unregister(tenant, user, second)
	assert.Zero(t, hub.Connections(tenant))
}
