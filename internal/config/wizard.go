package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to llmstream! Let's configure your client.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{string(ProviderAnthropic), string(ProviderOpenAI)},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Model",
		Default: DefaultModel(cfg.Provider),
	}
	if cfg.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}

	// 3. Temperature.
	tempPrompt := promptui.Prompt{
		Label:   "Temperature",
		Default: strconv.FormatFloat(cfg.Temperature, 'f', -1, 64),
		Validate: func(s string) error {
			_, err := strconv.ParseFloat(s, 64)
			return err
		},
	}
	tempStr, err := tempPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("temperature: %w", err)
	}
	cfg.Temperature, _ = strconv.ParseFloat(tempStr, 64)

	// 4. System prompt.
	systemPrompt := promptui.Prompt{
		Label:   "Default system prompt",
		Default: cfg.SystemPrompt,
	}
	if cfg.SystemPrompt, err = systemPrompt.Run(); err != nil {
		return nil, fmt.Errorf("system prompt: %w", err)
	}

	// 5. Multiple system messages.
	policyPrompt := promptui.Select{
		Label: "When a conversation has several system messages",
		Items: []string{
			"first: use the first one",
			"concat: join them all",
			"strict: reject the request",
		},
	}
	policyIdx, _, err := policyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("system policy selection: %w", err)
	}
	cfg.SystemPolicy = []string{"first", "concat", "strict"}[policyIdx]

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment before running llmstream.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
