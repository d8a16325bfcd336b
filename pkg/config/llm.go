package config

// LLMConfig configures the Anthropic client shared by extraction, weaving,
// and story synthesis (pkg/llm).
type LLMConfig struct {
	APIKeyEnv      string `yaml:"api_key_env" validate:"required"`
	Model          string `yaml:"model" validate:"required"`
	MaxRetries     int    `yaml:"max_retries" validate:"min=0"`
}

// DefaultLLMConfig returns the built-in Anthropic model defaults.
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		APIKeyEnv:  "ANTHROPIC_API_KEY",
		Model:      "claude-sonnet-4-5",
		MaxRetries: 2,
	}
}

// EmbedConfig configures the Vector Embedder (C4).
type EmbedConfig struct {
	APIKeyEnv string `yaml:"api_key_env" validate:"required"`
	Model     string `yaml:"model" validate:"required"`
	Dimension int    `yaml:"dimension" validate:"required,min=1"`
}

// DefaultEmbedConfig returns the built-in embedding defaults ("dim D (1024
// in the reference impl)" per spec.md §4.3 step 5).
func DefaultEmbedConfig() *EmbedConfig {
	return &EmbedConfig{
		APIKeyEnv: "OPENAI_API_KEY",
		Model:     "text-embedding-3-large",
		Dimension: 1024,
	}
}

// GraphConfig configures the Neo4j backend used by the projector and reader.
type GraphConfig struct {
	URI         string `yaml:"uri" validate:"required"`
	Username    string `yaml:"username" validate:"required"`
	PasswordEnv string `yaml:"password_env" validate:"required"`
	Database    string `yaml:"database" validate:"required"`
}

// DefaultGraphConfig returns local-dev Neo4j connection defaults.
func DefaultGraphConfig() *GraphConfig {
	return &GraphConfig{
		URI:         "neo4j://localhost:7687",
		Username:    "neo4j",
		PasswordEnv: "NEO4J_PASSWORD",
		Database:    "neo4j",
	}
}

// APIConfig configures the internal read/append HTTP surface (pkg/api).
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr" validate:"required"`
}

// DefaultAPIConfig returns the built-in HTTP listen address.
func DefaultAPIConfig() *APIConfig {
	return &APIConfig{ListenAddr: ":8090"}
}

// NotifyConfig configures the optional Slack editorial-dispatch notifier.
type NotifyConfig struct {
	Enabled  bool   `yaml:"enabled"`
	TokenEnv string `yaml:"token_env" validate:"required_if=Enabled true"`
	Channel  string `yaml:"channel" validate:"required_if=Enabled true"`
}

// DefaultNotifyConfig returns the notifier defaults (disabled until
// explicitly configured with a token and channel).
func DefaultNotifyConfig() *NotifyConfig {
	return &NotifyConfig{Enabled: false, TokenEnv: "SLACK_BOT_TOKEN"}
}
