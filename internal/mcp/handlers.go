package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

// handleStreamCompletion drains a completion stream and returns the text.
func (s *Server) handleStreamCompletion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt, err := request.RequireString("prompt")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: prompt"), nil
	}

	system := request.GetString("system", s.defaults.SystemPrompt)
	model := request.GetString("model", s.defaults.Model)

	req := llm.NewStreamRequest(model, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: prompt},
	})
	req.Temperature = request.GetFloat("temperature", s.defaults.Temperature)
	if s.defaults.MaxTokens > 0 {
		req.MaxTokens = s.defaults.MaxTokens
	}
	if n := request.GetInt("max_tokens", 0); n > 0 {
		req.MaxTokens = n
	}
	req.Options = s.defaults.Options

	stream, err := s.provider.StreamCompletion(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("completion failed: %v", err)), nil
	}

	text, err := llm.Collect(stream)
	if err != nil {
		if text != "" {
			return mcp.NewToolResultError(fmt.Sprintf("completion failed after partial output: %v\n\n%s", err, text)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("completion failed: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}
