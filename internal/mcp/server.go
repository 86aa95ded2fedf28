package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Defaults fill in tool arguments the agent leaves out.
type Defaults struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
	Options      map[string]any
}

// Server wraps an MCP server that exposes the completion tool.
type Server struct {
	provider llm.StreamProvider
	defaults Defaults
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server backed by the given provider.
func NewServer(provider llm.StreamProvider, defaults Defaults) *Server {
	s := &Server{
		provider: provider,
		defaults: defaults,
	}

	s.mcp = server.NewMCPServer(
		"llmstream",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(streamCompletionTool, s.handleStreamCompletion)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
