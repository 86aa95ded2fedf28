package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/llmstream/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing a stream_completion tool backed by the configured provider.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, provider, err := setup()
		if err != nil {
			return err
		}
		defer logger.Sync()

		mcpserver.Version = Version
		srv := mcpserver.NewServer(provider, mcpserver.Defaults{
			Model:        cfg.Model,
			Temperature:  cfg.Temperature,
			MaxTokens:    cfg.MaxTokens,
			SystemPrompt: cfg.SystemPrompt,
			Options:      cfg.Options,
		})

		fmt.Fprintf(os.Stderr, "llmstream MCP server v%s (%s, %s)\n", Version, provider.Name(), cfg.Model)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
