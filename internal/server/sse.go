package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type deltaEvent struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type doneEvent struct {
	ID string `json:"id"`
}

type errorEvent struct {
	ID string `json:"id"`
	errorDetail
}

// handleStream relays one completion as Server-Sent Events.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var body streamRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, errorDetail{Kind: "input", Message: "invalid request body: " + err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSONError(w, http.StatusInternalServerError, errorDetail{Kind: "internal", Message: "streaming unsupported"})
		return
	}

	m := s.trackStream("sse")
	stream, err := s.provider.StreamCompletion(r.Context(), s.defaults.toLLM(body))
	if err != nil {
		m.finish(outcomeRejected)
		writeJSONError(w, statusFor(err), detailFor(err))
		return
	}
	defer stream.Close()

	id := uuid.NewString()
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for stream.Next() {
		if err := writeSSE(w, "delta", deltaEvent{ID: id, Text: stream.Text()}); err != nil {
			s.logger.Debug("client went away", zap.String("stream_id", id), zap.Error(err))
			m.finish(outcomeAbandoned)
			return
		}
		m.fragment()
		flusher.Flush()
	}

	if err := stream.Err(); err != nil {
		if r.Context().Err() != nil {
			s.logger.Debug("client went away", zap.String("stream_id", id), zap.Error(err))
			m.finish(outcomeAbandoned)
			return
		}
		s.logger.Warn("stream failed", zap.String("stream_id", id), zap.Error(err))
		m.finish(outcomeError)
		writeSSE(w, "error", errorEvent{ID: id, errorDetail: detailFor(err)})
	} else {
		m.finish(outcomeDone)
		writeSSE(w, "done", doneEvent{ID: id})
	}
	flusher.Flush()
}

func writeSSE(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
