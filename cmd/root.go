package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/llmstream/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "llmstream",
	Short: "Stream chat completions from LLM providers",
	Long: `llmstream sends chat-style conversations to an LLM provider's streaming
completion endpoint and prints the generated text as it arrives. The
same conversation shape works for every supported provider; provider
quirks such as Anthropic's separate system field are handled here.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
