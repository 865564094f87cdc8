package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openpantry/pantryd/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketScanRequest is a receipt scan request sent over WebSocket.
// Image bytes arrive base64-encoded per encoding/json.
type WebSocketScanRequest struct {
	Type        string `json:"type"` // "scan"
	Image       []byte `json:"image,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Languages   string `json:"languages,omitempty"`
}

// WebSocketScanResponse is a scan status or result message.
type WebSocketScanResponse struct {
	Type      string           `json:"type"`
	Status    string           `json:"status"` // "processing", "completed", "error"
	Progress  float64          `json:"progress,omitempty"`
	Result    *pipeline.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}

// scanWebSocketHandler handles WebSocket connections for receipt scans
// with progress feedback.
func (s *Server) scanWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	s.logger.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Read deadline prevents hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Ping to keep the connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

// handleWebSocketMessage processes one scan request message.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var req WebSocketScanRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", fmt.Sprintf("failed to parse request: %v", err), "")
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	if req.Type != "scan" {
		s.sendWebSocketError(conn, "invalid_request", "unsupported request type: "+req.Type, requestID)
		return
	}
	if len(req.Image) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "no image data provided", requestID)
		return
	}

	select {
	case s.scanSlots <- struct{}{}:
		defer func() { <-s.scanSlots }()
	default:
		s.sendWebSocketError(conn, "busy", "too many concurrent scans, retry later", requestID)
		return
	}

	s.sendWebSocketResponse(conn, WebSocketScanResponse{
		Type:      "scan_response",
		Status:    "processing",
		Progress:  0.1,
		RequestID: requestID,
	})

	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout())
	defer cancel()

	start := time.Now()
	res, err := s.scanner.ProcessReceipt(ctx, req.Image, req.ContentType, req.Languages)
	scanDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		code := pipeline.CodeOf(err)
		scanRequestsTotal.WithLabelValues(string(code)).Inc()
		s.sendWebSocketResponse(conn, WebSocketScanResponse{
			Type:      "scan_response",
			Status:    "error",
			Error:     publicMessage(err, code),
			ErrorCode: string(code),
			RequestID: requestID,
		})
		return
	}

	scanRequestsTotal.WithLabelValues("ok").Inc()
	scanItemsDetected.Observe(float64(res.TotalItemsDetected))

	s.sendWebSocketResponse(conn, WebSocketScanResponse{
		Type:      "scan_response",
		Status:    "completed",
		Progress:  1.0,
		Result:    res,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a JSON response over the connection.
func (s *Server) sendWebSocketResponse(conn *websocket.Conn, resp WebSocketScanResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("failed to marshal WebSocket response", "error", err)
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("failed to send WebSocket response", "error", err)
		return
	}
	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over the connection.
func (s *Server) sendWebSocketError(conn *websocket.Conn, code, message, requestID string) {
	s.sendWebSocketResponse(conn, WebSocketScanResponse{
		Type:      "scan_response",
		Status:    "error",
		Error:     message,
		ErrorCode: code,
		RequestID: requestID,
	})
}
