package config

// Config is the fully-resolved, validated configuration for one RootSignal
// process: the scopes it observes, the sources it seeds, and every
// component's tunables.
type Config struct {
	configDir string

	Scopes  []Scope      `yaml:"scopes" validate:"required,dive"`
	Sources []SourceSeed `yaml:"sources" validate:"dive"`

	Scout       *ScoutConfig        `yaml:"scout" validate:"required"`
	LinkPromote *LinkPromoterConfig `yaml:"link_promote" validate:"required"`
	Weave       *WeaveConfig        `yaml:"weave" validate:"required"`
	Materialize *MaterializeConfig  `yaml:"materialize" validate:"required"`
	Reap        *ReapConfig         `yaml:"reap" validate:"required"`
	LLM         *LLMConfig          `yaml:"llm" validate:"required"`
	Embed       *EmbedConfig        `yaml:"embed" validate:"required"`
	Graph       *GraphConfig        `yaml:"graph" validate:"required"`
	API         *APIConfig          `yaml:"api" validate:"required"`
	Notify      *NotifyConfig       `yaml:"notify"`
}

// ConfigDir returns the directory Config was loaded from.
func (c *Config) ConfigDir() string { return c.configDir }

// ScopeByName returns the named scope, or ErrScopeNotFound.
func (c *Config) ScopeByName(name string) (*Scope, error) {
	for i := range c.Scopes {
		if c.Scopes[i].Name == name {
			return &c.Scopes[i], nil
		}
	}
	return nil, ErrScopeNotFound
}
