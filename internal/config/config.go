// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads and validates the generation run configuration.
// A run is configured by one JSON file; every key may be overridden by a
// CORPUSGEN_-prefixed environment variable (e.g. CORPUSGEN_MODEL_NAME).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// DefaultPath is the config file used when no --config flag is given.
const DefaultPath = "config.json"

// ErrConfig marks a missing, unparseable, or invalid configuration.
// It is fatal and reported before any generation starts.
var ErrConfig = errors.New("configuration error")

var validate = validator.New(validator.WithRequiredStructEnabled())

// defaults mirrors the values the generator has always assumed when a key is absent.
var defaults = map[string]any{
	"words_to_seed":          5,
	"max_generation_cost":    10.0,
	"texts_per_state_save":   10,
	"save_detailed_metadata": true,
	"use_seed_words":         false,
	"request_timeout":        60 * time.Second,
	"max_retries":            3,
	"retry_delay":            5 * time.Second,
	"max_tokens":             400,
	"temperature":            0.75,
	"rate_limit_delay":       2 * time.Second,
	"free_tier_delay_min":    3 * time.Second,
	"free_tier_delay_max":    7 * time.Second,
	"log_level":              "info",
	"log_format":             "text",
}

// Load reads the JSON config at path, applies defaults and environment
// overrides, and validates the result. All failures wrap ErrConfig.
func Load(path string) (types.Config, error) {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return types.Config{}, fmt.Errorf("%w: config file %s not found", ErrConfig, path)
		}
		return types.Config{}, fmt.Errorf("%w: reading %s: %v", ErrConfig, path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("CORPUSGEN")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return types.Config{}, fmt.Errorf("%w: %s is not valid JSON: %v", ErrConfig, path, err)
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: decoding %s: %v", ErrConfig, path, err)
	}

	cfg = normalize(cfg)
	if err := Validate(cfg); err != nil {
		return types.Config{}, fmt.Errorf("%w: %s: %v", ErrConfig, path, err)
	}
	return cfg, nil
}

// normalize fills derived fields: the strategy from use_seed_words and the
// metadata sidecar path from the state file path.
func normalize(cfg types.Config) types.Config {
	if cfg.Strategy == "" {
		if cfg.UseSeedWords {
			cfg.Strategy = types.StrategySeeded
		} else {
			cfg.Strategy = types.StrategyGeneral
		}
	}
	if cfg.MetadataPath == "" {
		cfg.MetadataPath = MetadataPathFor(cfg.StateFilePath)
	}
	cfg.ProviderPreference = trimAll(cfg.ProviderPreference)
	return cfg
}

// MetadataPathFor derives the JSONL sidecar path from a checkpoint path:
// "state.json" becomes "state_metadata.jsonl".
func MetadataPathFor(statePath string) string {
	ext := filepath.Ext(statePath)
	if ext == ".json" {
		return strings.TrimSuffix(statePath, ext) + "_metadata.jsonl"
	}
	return statePath + "_metadata.jsonl"
}

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(cfg types.Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	switch cfg.Strategy {
	case types.StrategySeeded:
		if cfg.ECPWordListPath == "" {
			return errors.New("ecp_word_list_path is required for the seeded strategy")
		}
		if cfg.WordsToSeed <= 0 {
			return errors.New("words_to_seed must be positive for the seeded strategy")
		}
	case types.StrategySpoken:
		if cfg.TitlesPath == "" {
			return errors.New("titles_path is required for the spoken strategy")
		}
	}
	return nil
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
