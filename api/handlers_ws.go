package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/transferai/agreement-proxy/events"
)

const wsWriteTimeout = 10 * time.Second

// wsMessage is the envelope pushed to connected clients
type wsMessage struct {
	Type     string      `json:"type"`
	Snapshot interface{} `json:"snapshot,omitempty"`
}

// handleWebSocket upgrades the connection and pushes a message whenever the
// selection graph changes or the backend credential expires. Clients that fall
// behind miss intermediate snapshots and pick up the latest one.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	graphSub := s.graph.Updates().Subscribe()
	defer graphSub.Cancel()
	authSub := s.authExpired.Subscribe()
	defer authSub.Cancel()

	// Reader goroutine: its only job is to notice the peer going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Initial snapshot so the client does not wait for the first change
	if err := s.writeWSMessage(conn, wsMessage{Type: events.TopicGraphUpdated, Snapshot: s.graph.Snapshot()}); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-graphSub.Chan():
			if err := s.writeWSMessage(conn, wsMessage{Type: events.TopicGraphUpdated, Snapshot: s.graph.Snapshot()}); err != nil {
				return
			}
		case <-authSub.Chan():
			if err := s.writeWSMessage(conn, wsMessage{Type: events.TopicAuthExpired}); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeWSMessage(conn *websocket.Conn, message wsMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(message); err != nil {
		log.Printf("WebSocket write failed: %v", err)
		return err
	}
	return nil
}
