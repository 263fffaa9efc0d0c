package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/transferai/agreement-proxy/assist"
	"github.com/transferai/agreement-proxy/events"
)

const wsReadTimeout = 2 * time.Second

type wsEnvelope struct {
	Type     string          `json:"type"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// dialTestWS serves handleWebSocket over httptest and dials it
func dialTestWS(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	httpServer := httptest.NewServer(http.HandlerFunc(server.handleWebSocket))
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wsReadTimeout)))
	var envelope wsEnvelope
	require.NoError(t, conn.ReadJSON(&envelope))
	return envelope
}

func TestWebSocketInitialSnapshot(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestWS(t, server)

	envelope := readEnvelope(t, conn)
	assert.Equal(t, events.TopicGraphUpdated, envelope.Type)
	require.NotEmpty(t, envelope.Snapshot)

	var snapshot map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(envelope.Snapshot, &snapshot))
	assert.Contains(t, snapshot, "selection")
	assert.Contains(t, snapshot, "receivingOptions")
}

func TestWebSocketPushesOnGraphUpdate(t *testing.T) {
	server, apiClient := newTestServer(t)

	apiClient.EXPECT().ReceivingInstitutions(gomock.Any(), "113").
		Return(assist.NameIDMap{"UC Berkeley": "79"}, nil, nil).AnyTimes()

	conn := dialTestWS(t, server)
	readEnvelope(t, conn) // initial snapshot

	require.NoError(t, server.graph.SetSending([]assist.Institution{{Name: "De Anza College", ID: "113"}}))

	// The mutation fires at least one update; drain until the receiving
	// options reach a ready state
	deadline := time.Now().Add(wsReadTimeout)
	for {
		require.True(t, time.Now().Before(deadline), "no ready snapshot pushed before the deadline")

		envelope := readEnvelope(t, conn)
		require.Equal(t, events.TopicGraphUpdated, envelope.Type)

		var snapshot struct {
			ReceivingOptions struct {
				State string `json:"state"`
			} `json:"receivingOptions"`
		}
		require.NoError(t, json.Unmarshal(envelope.Snapshot, &snapshot))
		if snapshot.ReceivingOptions.State == "ready" {
			break
		}
	}
}

func TestWebSocketPushesAuthExpired(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dialTestWS(t, server)

	// The initial snapshot write happens after the handler has subscribed,
	// so reading it guarantees the emit below is seen
	readEnvelope(t, conn)

	server.authExpired.Emit(context.Background())

	envelope := readEnvelope(t, conn)
	assert.Equal(t, events.TopicAuthExpired, envelope.Type)
	assert.Empty(t, envelope.Snapshot)
}
