package config

// defaultModels maps each provider to the model used when none is configured.
var defaultModels = map[ProviderType]string{
	ProviderAnthropic: "claude-sonnet-4-5-20250929",
	ProviderOpenAI:    "gpt-4o",
}

// DefaultSystemPrompt is sent when the caller supplies no system message.
const DefaultSystemPrompt = "You are a helpful assistant."

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:     ProviderAnthropic,
		Model:        defaultModels[ProviderAnthropic],
		Temperature:  0.7,
		MaxTokens:    2048,
		SystemPolicy: "first",
		SystemPrompt: DefaultSystemPrompt,
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultModel returns the default model for the given provider.
// Returns the Anthropic default if the provider is unknown.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderAnthropic]
}
