package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive multi-turn chat with streamed replies",
	Long:  `Starts an interactive session that keeps the conversation history and streams each reply. Type "exit" or press Ctrl-D to quit.`,
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().String("system", "", "system prompt (defaults to system_prompt from config)")
	chatCmd.Flags().String("model", "", "model to use (defaults to config)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, logger, provider, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	system, _ := cmd.Flags().GetString("system")
	if system == "" {
		system = cfg.SystemPrompt
	}
	if system == "" {
		return fmt.Errorf("a system prompt is required: pass --system or set system_prompt")
	}
	model, _ := cmd.Flags().GetString("model")
	if model == "" {
		model = cfg.Model
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	history := []llm.Message{{Role: llm.RoleSystem, Content: system}}
	fmt.Fprintf(out, "Chatting with %s (%s). Type \"exit\" to quit.\n\n", provider.Name(), model)

	for {
		prompt := promptui.Prompt{Label: "you"}
		input, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		history = append(history, llm.Message{Role: llm.RoleUser, Content: input})
		req := llm.NewStreamRequest(model, history)
		req.Temperature = cfg.Temperature
		req.MaxTokens = cfg.MaxTokens
		req.Options = cfg.Options

		var reply strings.Builder
		var streamErr error
		for text, err := range llm.Fragments(ctx, provider, req) {
			if err != nil {
				streamErr = err
				break
			}
			reply.WriteString(text)
			fmt.Fprint(out, text)
		}
		fmt.Fprintln(out)

		if streamErr != nil {
			// Drop the unanswered turn so the history stays well-formed.
			history = history[:len(history)-1]
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", streamErr)
			if ctx.Err() != nil {
				return nil
			}
			continue
		}
		history = append(history, llm.Message{Role: llm.RoleAssistant, Content: reply.String()})
		fmt.Fprintln(out)
	}
}
