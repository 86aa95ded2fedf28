package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llmstream/internal/llm"
)

var streamCmd = &cobra.Command{
	Use:   "stream [prompt]",
	Short: "Stream a single completion to stdout",
	Long: `Sends a conversation to the configured provider and prints the generated
text as it arrives. The conversation is the optional --messages file
followed by the prompt argument as a user message.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStream,
}

func init() {
	streamCmd.Flags().String("system", "", "system prompt (defaults to system_prompt from config)")
	streamCmd.Flags().String("model", "", "model to use (defaults to config)")
	streamCmd.Flags().Float64("temperature", 0.7, "sampling temperature")
	streamCmd.Flags().Int("max-tokens", 0, "maximum tokens to generate (defaults to config)")
	streamCmd.Flags().String("messages", "", "conversation file (.json or .yaml)")
	streamCmd.Flags().StringArray("option", nil, "provider option as key=value (repeatable)")
	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	cfg, logger, provider, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	system, _ := cmd.Flags().GetString("system")
	model, _ := cmd.Flags().GetString("model")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	messagesFile, _ := cmd.Flags().GetString("messages")
	optionPairs, _ := cmd.Flags().GetStringArray("option")

	var history []llm.Message
	if messagesFile != "" {
		if history, err = readMessagesFile(messagesFile); err != nil {
			return err
		}
	}

	var prompt string
	if len(args) > 0 {
		prompt = args[0]
	}
	if prompt == "" && len(history) == 0 {
		return fmt.Errorf("nothing to send: pass a prompt or --messages")
	}

	if model == "" {
		model = cfg.Model
	}
	req := llm.NewStreamRequest(model, buildConversation(history, system, cfg.SystemPrompt, prompt))
	req.Temperature = cfg.Temperature
	if cmd.Flags().Changed("temperature") {
		req.Temperature, _ = cmd.Flags().GetFloat64("temperature")
	}
	req.MaxTokens = cfg.MaxTokens
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}
	if req.Options, err = parseOptions(optionPairs, cfg.Options); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	for text, err := range llm.Fragments(ctx, provider, req) {
		if err != nil {
			fmt.Fprintln(out)
			return err
		}
		fmt.Fprint(out, text)
	}
	fmt.Fprintln(out)
	return nil
}
