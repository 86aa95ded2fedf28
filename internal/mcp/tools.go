package mcp

import "github.com/mark3labs/mcp-go/mcp"

var streamCompletionTool = mcp.NewTool("stream_completion",
	mcp.WithDescription("Send a prompt to the configured LLM provider and return the full generated text."),
	mcp.WithString("prompt",
		mcp.Required(),
		mcp.Description("The user message to send."),
	),
	mcp.WithString("system",
		mcp.Description("System prompt. Defaults to the configured system prompt."),
	),
	mcp.WithString("model",
		mcp.Description("Model identifier. Defaults to the configured model."),
	),
	mcp.WithNumber("temperature",
		mcp.Description("Sampling temperature."),
	),
	mcp.WithNumber("max_tokens",
		mcp.Description("Maximum number of tokens to generate."),
	),
)
