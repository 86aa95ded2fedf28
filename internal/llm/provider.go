package llm

import "context"

// StreamProvider defines the interface for streaming LLM providers.
type StreamProvider interface {
	// StreamCompletion opens a streaming completion. The caller owns the
	// returned stream and must drain or Close it.
	StreamCompletion(ctx context.Context, req StreamRequest) (*TextStream, error)
	// Name returns the name of this provider.
	Name() string
}
