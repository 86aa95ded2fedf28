package llm

import (
	"fmt"
	"os"
)

// NewStreamProvider creates a streaming provider of the given type, reading
// its API key from the environment. A missing key does not fail here; it
// is reported by the first StreamCompletion call.
// Supported provider types: "anthropic", "openai".
func NewStreamProvider(providerType string, opts ...Option) (StreamProvider, error) {
	switch providerType {
	case "anthropic":
		return NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), opts...), nil
	case "openai":
		return NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), opts...), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
}
