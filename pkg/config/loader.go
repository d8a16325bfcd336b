package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rootsignalYAML mirrors rootsignal.yaml on disk before defaults are merged
// in; every component section is optional there and filled from its
// Default*Config() if omitted.
type rootsignalYAML struct {
	Scopes      []Scope             `yaml:"scopes"`
	Sources     []SourceSeed        `yaml:"sources"`
	Scout       *ScoutConfig        `yaml:"scout"`
	LinkPromote *LinkPromoterConfig `yaml:"link_promote"`
	Weave       *WeaveConfig        `yaml:"weave"`
	Materialize *MaterializeConfig  `yaml:"materialize"`
	Reap        *ReapConfig         `yaml:"reap"`
	LLM         *LLMConfig          `yaml:"llm"`
	Embed       *EmbedConfig        `yaml:"embed"`
	Graph       *GraphConfig        `yaml:"graph"`
	API         *APIConfig          `yaml:"api"`
	Notify      *NotifyConfig       `yaml:"notify"`
}

// Initialize loads rootsignal.yaml from configDir, expands environment
// variables, fills every omitted component section with its built-in
// default, and validates the result. This is the sole entry point
// cmd/rootsignal and cmd/rootsignal-migrate use to obtain a Config.
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("loading configuration")

	raw, err := loadYAML(configDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		configDir:   configDir,
		Scopes:      raw.Scopes,
		Sources:     raw.Sources,
		Scout:       raw.Scout,
		LinkPromote: raw.LinkPromote,
		Weave:       raw.Weave,
		Materialize: raw.Materialize,
		Reap:        raw.Reap,
		LLM:         raw.LLM,
		Embed:       raw.Embed,
		Graph:       raw.Graph,
		API:         raw.API,
		Notify:      raw.Notify,
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log.Info("configuration loaded", "scopes", len(cfg.Scopes), "sources", len(cfg.Sources))
	return cfg, nil
}

func loadYAML(configDir string) (*rootsignalYAML, error) {
	path := filepath.Join(configDir, "rootsignal.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewLoadError(path, ErrConfigNotFound)
		}
		return nil, NewLoadError(path, err)
	}

	data = ExpandEnv(data)

	var raw rootsignalYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, NewLoadError(path, fmt.Errorf("%w: %v", ErrInvalidYAML, err))
	}
	return &raw, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Scout == nil {
		cfg.Scout = DefaultScoutConfig()
	}
	if cfg.LinkPromote == nil {
		cfg.LinkPromote = DefaultLinkPromoterConfig()
	}
	if cfg.Weave == nil {
		cfg.Weave = DefaultWeaveConfig()
	}
	if cfg.Materialize == nil {
		cfg.Materialize = DefaultMaterializeConfig()
	}
	if cfg.Reap == nil {
		cfg.Reap = DefaultReapConfig()
	}
	if cfg.LLM == nil {
		cfg.LLM = DefaultLLMConfig()
	}
	if cfg.Embed == nil {
		cfg.Embed = DefaultEmbedConfig()
	}
	if cfg.Graph == nil {
		cfg.Graph = DefaultGraphConfig()
	}
	if cfg.API == nil {
		cfg.API = DefaultAPIConfig()
	}
	if cfg.Notify == nil {
		cfg.Notify = DefaultNotifyConfig()
	}
}
