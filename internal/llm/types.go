package llm

import "fmt"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message represents a single message in a conversation.
type Message struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// StreamRequest contains the parameters for a streaming completion request.
type StreamRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// Options are provider-specific fields forwarded verbatim in the
	// request body. Named fields above take precedence on conflict.
	Options map[string]any
}

// NewStreamRequest returns a request with the default temperature and
// max token count.
func NewStreamRequest(model string, messages []Message) StreamRequest {
	return StreamRequest{
		Model:       model,
		Messages:    messages,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// maxTokens fills in the default for an unset (zero) value. Other values,
// negative ones included, are sent as given.
func (r StreamRequest) maxTokens() int {
	if r.MaxTokens == 0 {
		return DefaultMaxTokens
	}
	return r.MaxTokens
}

// SystemPolicy controls how more than one system message is handled.
type SystemPolicy string

const (
	// SystemFirst honors the first system message and drops the rest.
	SystemFirst SystemPolicy = "first"
	// SystemConcat joins every system message with a blank line.
	SystemConcat SystemPolicy = "concat"
	// SystemStrict rejects conversations with more than one system message.
	SystemStrict SystemPolicy = "strict"
)

// ParseSystemPolicy converts s to a SystemPolicy. An empty string yields SystemFirst.
func ParseSystemPolicy(s string) (SystemPolicy, error) {
	switch SystemPolicy(s) {
	case "", SystemFirst:
		return SystemFirst, nil
	case SystemConcat:
		return SystemConcat, nil
	case SystemStrict:
		return SystemStrict, nil
	}
	return "", fmt.Errorf("invalid system policy %q: must be one of first, concat, strict", s)
}
