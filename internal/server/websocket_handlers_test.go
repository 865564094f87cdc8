package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpantry/pantryd/internal/testutil"
)

func dialScanWebSocket(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(s.scanWebSocketHandler))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/scan"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	return conn
}

func readScanResponse(t *testing.T, conn *websocket.Conn) WebSocketScanResponse {
	t.Helper()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp WebSocketScanResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

func TestScanWebSocket(t *testing.T) {
	s := newTestServer(t)
	conn := dialScanWebSocket(t, s)

	req := WebSocketScanRequest{
		Type:        "scan",
		Image:       testutil.ValidReceiptPNG(t),
		ContentType: "image/png",
	}
	require.NoError(t, conn.WriteJSON(req))

	processing := readScanResponse(t, conn)
	assert.Equal(t, "processing", processing.Status)
	assert.NotEmpty(t, processing.RequestID)

	completed := readScanResponse(t, conn)
	require.Equal(t, "completed", completed.Status)
	assert.Equal(t, processing.RequestID, completed.RequestID)
	require.NotNil(t, completed.Result)
	assert.Equal(t, 3, completed.Result.TotalItemsDetected)
}

func TestScanWebSocketInvalidRequest(t *testing.T) {
	s := newTestServer(t)
	conn := dialScanWebSocket(t, s)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	resp := readScanResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorCode)
}

func TestScanWebSocketUnsupportedType(t *testing.T) {
	s := newTestServer(t)
	conn := dialScanWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketScanRequest{Type: "pdf"}))

	resp := readScanResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorCode)
}

func TestScanWebSocketNoImage(t *testing.T) {
	s := newTestServer(t)
	conn := dialScanWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketScanRequest{Type: "scan"}))

	resp := readScanResponse(t, conn)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorCode)
}

func TestScanWebSocketPipelineError(t *testing.T) {
	s := newTestServer(t)
	conn := dialScanWebSocket(t, s)

	req := WebSocketScanRequest{
		Type:        "scan",
		Image:       []byte("definitely not an image"),
		ContentType: "image/png",
	}
	require.NoError(t, conn.WriteJSON(req))

	processing := readScanResponse(t, conn)
	assert.Equal(t, "processing", processing.Status)

	failed := readScanResponse(t, conn)
	assert.Equal(t, "error", failed.Status)
	assert.Equal(t, "INVALID_IMAGE_TYPE", failed.ErrorCode)
}
