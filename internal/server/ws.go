package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type string `json:"type"` // "stream"
	streamRequest
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string `json:"type"` // "delta", "done" or "error"
	ID        string `json:"id,omitempty"`
	Text      string `json:"text,omitempty"`
	Content   string `json:"content,omitempty"`
	Kind      string `json:"kind,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWS(conn, wsResponse{Type: "error", Kind: "input", Content: "invalid message format"})
			continue
		}

		switch req.Type {
		case "stream":
			if !s.relayWS(conn, r, req.streamRequest) {
				return
			}
		default:
			s.sendWS(conn, wsResponse{Type: "error", Kind: "input", Content: "unknown message type: " + req.Type})
		}
	}
}

// relayWS streams one completion to conn. It returns false once the
// connection can no longer be written to.
func (s *Server) relayWS(conn *websocket.Conn, r *http.Request, body streamRequest) bool {
	id := uuid.NewString()

	m := s.trackStream("websocket")
	stream, err := s.provider.StreamCompletion(r.Context(), s.defaults.toLLM(body))
	if err != nil {
		m.finish(outcomeRejected)
		d := detailFor(err)
		return s.sendWS(conn, wsResponse{Type: "error", ID: id, Kind: d.Kind, Content: d.Message, Retryable: d.Retryable})
	}
	defer stream.Close()

	for stream.Next() {
		if !s.sendWS(conn, wsResponse{Type: "delta", ID: id, Text: stream.Text()}) {
			m.finish(outcomeAbandoned)
			return false
		}
		m.fragment()
	}
	if err := stream.Err(); err != nil {
		if r.Context().Err() != nil {
			m.finish(outcomeAbandoned)
			return false
		}
		m.finish(outcomeError)
		d := detailFor(err)
		return s.sendWS(conn, wsResponse{Type: "error", ID: id, Kind: d.Kind, Content: d.Message, Retryable: d.Retryable})
	}
	m.finish(outcomeDone)
	return s.sendWS(conn, wsResponse{Type: "done", ID: id})
}

func (s *Server) sendWS(conn *websocket.Conn, resp wsResponse) bool {
	if err := conn.WriteJSON(resp); err != nil {
		s.logger.Warn("websocket write", zap.Error(err))
		return false
	}
	return true
}
