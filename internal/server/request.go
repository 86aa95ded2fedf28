package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

// streamRequest is the JSON body accepted by the stream endpoints.
type streamRequest struct {
	Model       string         `json:"model,omitempty"`
	Messages    []llm.Message  `json:"messages"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Options     map[string]any `json:"options,omitempty"`
}

// toLLM applies the server defaults. When the conversation carries no
// system message and a default system prompt is configured, it is
// prepended.
func (d Defaults) toLLM(sr streamRequest) llm.StreamRequest {
	model := sr.Model
	if model == "" {
		model = d.Model
	}

	messages := sr.Messages
	if d.SystemPrompt != "" && !hasSystem(messages) {
		messages = append([]llm.Message{{Role: llm.RoleSystem, Content: d.SystemPrompt}}, messages...)
	}

	req := llm.NewStreamRequest(model, messages)
	req.Temperature = d.Temperature
	if sr.Temperature != nil {
		req.Temperature = *sr.Temperature
	}
	if d.MaxTokens > 0 {
		req.MaxTokens = d.MaxTokens
	}
	if sr.MaxTokens > 0 {
		req.MaxTokens = sr.MaxTokens
	}

	if len(d.Options) > 0 || len(sr.Options) > 0 {
		req.Options = make(map[string]any, len(d.Options)+len(sr.Options))
		for k, v := range d.Options {
			req.Options[k] = v
		}
		for k, v := range sr.Options {
			req.Options[k] = v
		}
	}
	return req
}

func hasSystem(messages []llm.Message) bool {
	for _, m := range messages {
		if m.Role == llm.RoleSystem {
			return true
		}
	}
	return false
}

// errorBody is the JSON error shape for failures before streaming starts.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func detailFor(err error) errorDetail {
	d := errorDetail{Kind: "internal", Message: err.Error()}
	if se, ok := llm.AsStreamError(err); ok {
		d.Kind = string(se.Kind)
		d.Retryable = se.Retryable()
	}
	return d
}

// statusFor maps a failure that happened before any output to an HTTP status.
func statusFor(err error) int {
	if llm.KindOf(err) == llm.KindInput {
		return http.StatusBadRequest
	}
	if errors.Is(err, llm.ErrStreamFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSONError(w http.ResponseWriter, status int, d errorDetail) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: d})
}
