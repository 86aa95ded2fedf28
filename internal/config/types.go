package config

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
)

// Config is the top-level llmstream configuration, corresponding to .llmstream.yml.
type Config struct {
	Provider     ProviderType   `yaml:"provider" koanf:"provider"`
	Model        string         `yaml:"model" koanf:"model"`
	Temperature  float64        `yaml:"temperature" koanf:"temperature"`
	MaxTokens    int            `yaml:"max_tokens" koanf:"max_tokens"`
	SystemPolicy string         `yaml:"system_policy" koanf:"system_policy"`
	SystemPrompt string         `yaml:"system_prompt" koanf:"system_prompt"`
	BaseURL      string         `yaml:"base_url,omitempty" koanf:"base_url"`
	Options      map[string]any `yaml:"options,omitempty" koanf:"options"`
	Server       ServerConfig   `yaml:"server" koanf:"server"`
	Logging      LoggingConfig  `yaml:"logging" koanf:"logging"`
}

// ServerConfig holds settings for the HTTP relay.
type ServerConfig struct {
	Port            int  `yaml:"port" koanf:"port"`
	AllowAllOrigins bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}
