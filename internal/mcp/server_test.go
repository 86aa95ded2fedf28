package mcp

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

// mockSource yields canned fragments, then err or io.EOF.
type mockSource struct {
	fragments []string
	err       error
}

func (m *mockSource) Recv() (string, error) {
	if len(m.fragments) > 0 {
		f := m.fragments[0]
		m.fragments = m.fragments[1:]
		return f, nil
	}
	if m.err != nil {
		return "", m.err
	}
	return "", io.EOF
}

func (m *mockSource) Close() error { return nil }

// mockProvider implements llm.StreamProvider for testing.
type mockProvider struct {
	fragments []string
	err       error
	last      llm.StreamRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) StreamCompletion(_ context.Context, req llm.StreamRequest) (*llm.TextStream, error) {
	m.last = req
	return llm.NewTextStream("mock", &mockSource{fragments: m.fragments, err: m.err}, nil), nil
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", result.Content[0])
	}
	return text.Text
}

func TestToolDefinitions(t *testing.T) {
	if streamCompletionTool.Name != "stream_completion" {
		t.Errorf("tool name = %q, want %q", streamCompletionTool.Name, "stream_completion")
	}
	if streamCompletionTool.Description == "" {
		t.Error("tool description should not be empty")
	}
}

func TestNewServer(t *testing.T) {
	provider := &mockProvider{}
	srv := NewServer(provider, Defaults{Model: "m"})

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.provider != provider {
		t.Error("provider not set correctly")
	}
}

func TestHandleStreamCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("collects fragments", func(t *testing.T) {
		provider := &mockProvider{fragments: []string{"Hello", ", ", "world"}}
		srv := NewServer(provider, Defaults{Model: "default-model", SystemPrompt: "Be concise", MaxTokens: 300})

		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{
			"prompt":      "Hi",
			"temperature": 0.2,
		}

		result, err := srv.handleStreamCompletion(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if got := resultText(t, result); got != "Hello, world" {
			t.Errorf("expected 'Hello, world', got %q", got)
		}

		last := provider.last
		if last.Model != "default-model" {
			t.Errorf("expected default model, got %q", last.Model)
		}
		if last.Messages[0].Role != llm.RoleSystem || last.Messages[0].Content != "Be concise" {
			t.Errorf("expected default system prompt, got %+v", last.Messages[0])
		}
		if last.Temperature != 0.2 {
			t.Errorf("expected temperature 0.2, got %v", last.Temperature)
		}
		if last.MaxTokens != 300 {
			t.Errorf("expected max tokens 300, got %d", last.MaxTokens)
		}
	})

	t.Run("missing prompt", func(t *testing.T) {
		srv := NewServer(&mockProvider{}, Defaults{})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleStreamCompletion(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for missing prompt")
		}
	})

	t.Run("stream failure", func(t *testing.T) {
		provider := &mockProvider{
			fragments: []string{"part"},
			err:       &llm.StreamError{Provider: "mock", Kind: llm.KindTransport, Message: "timeout"},
		}
		srv := NewServer(provider, Defaults{SystemPrompt: "s"})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"prompt": "Hi"}

		result, err := srv.handleStreamCompletion(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		text := resultText(t, result)
		if !strings.Contains(text, "timeout") || !strings.Contains(text, "part") {
			t.Errorf("expected cause and partial output, got %q", text)
		}
	})

	t.Run("configured zero temperature", func(t *testing.T) {
		provider := &mockProvider{fragments: []string{"ok"}}
		srv := NewServer(provider, Defaults{Model: "m", SystemPrompt: "s", Temperature: 0})
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"prompt": "Hi"}

		if _, err := srv.handleStreamCompletion(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if provider.last.Temperature != 0 {
			t.Errorf("expected configured temperature 0, got %v", provider.last.Temperature)
		}
	})
}
