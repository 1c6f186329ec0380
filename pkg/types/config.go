// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// StrategyName selects the prompt-construction strategy for a run.
type StrategyName string

const (
	StrategySeeded  StrategyName = "seeded"
	StrategyGeneral StrategyName = "general"
	StrategyDynamic StrategyName = "dynamic"
	StrategySpoken  StrategyName = "spoken"
)

// HTTPConfig holds the settings for calls to the text-generation endpoint.
type HTTPConfig struct {
	// APIBaseURL is the full chat-completions endpoint URL.
	APIBaseURL string `json:"api_base_url" mapstructure:"api_base_url" validate:"required,url"`

	// RequestTimeout bounds a single attempt (default 60s).
	RequestTimeout time.Duration `json:"request_timeout" mapstructure:"request_timeout" validate:"gt=0"`

	// MaxRetries is the total number of attempts per prompt (default 3).
	MaxRetries int `json:"max_retries" mapstructure:"max_retries" validate:"gte=1"`

	// RetryDelay is the fixed pause between attempts (default 5s).
	RetryDelay time.Duration `json:"retry_delay" mapstructure:"retry_delay" validate:"gte=0"`
}

// ModelConfig holds the request parameters sent with every generation.
type ModelConfig struct {
	// ModelName is the model identifier, e.g. "meta-llama/llama-3.1-8b-instruct".
	ModelName string `json:"model_name" mapstructure:"model_name" validate:"required"`

	// ProviderPreference is an optional provider ordering hint.
	ProviderPreference []string `json:"provider_preference,omitempty" mapstructure:"provider_preference"`

	// MaxTokens caps the output length of one generation (default 400).
	MaxTokens int `json:"max_tokens" mapstructure:"max_tokens" validate:"gt=0"`

	// Temperature is the sampling temperature (default 0.75).
	Temperature float64 `json:"temperature" mapstructure:"temperature" validate:"gte=0,lte=2"`
}

// Config is the immutable configuration of one generation run.
// It is loaded and validated once and then passed by value.
type Config struct {
	HTTPConfig  `mapstructure:",squash"`
	ModelConfig `mapstructure:",squash"`

	TargetWordCount int `json:"target_word_count" mapstructure:"target_word_count" validate:"gt=0"`
	WordsToSeed     int `json:"words_to_seed" mapstructure:"words_to_seed" validate:"gte=0"`

	OutputCorpusPath string `json:"output_corpus_path" mapstructure:"output_corpus_path" validate:"required"`
	StateFilePath    string `json:"state_file_path" mapstructure:"state_file_path" validate:"required"`

	// MetadataPath is the JSONL sidecar. Empty means derive it from StateFilePath.
	MetadataPath string `json:"metadata_path,omitempty" mapstructure:"metadata_path"`

	// CatalogPath enables the SQLite metadata catalog when set.
	CatalogPath string `json:"catalog_path,omitempty" mapstructure:"catalog_path"`

	MaxGenerationCost float64 `json:"max_generation_cost" mapstructure:"max_generation_cost" validate:"gt=0"`
	TextsPerStateSave int     `json:"texts_per_state_save" mapstructure:"texts_per_state_save" validate:"gt=0"`

	UseSeedWords         bool         `json:"use_seed_words" mapstructure:"use_seed_words"`
	Strategy             StrategyName `json:"strategy" mapstructure:"strategy" validate:"omitempty,oneof=seeded general dynamic spoken"`
	ECPWordListPath      string       `json:"ecp_word_list_path,omitempty" mapstructure:"ecp_word_list_path"`
	TitlesPath           string       `json:"titles_path,omitempty" mapstructure:"titles_path"`
	TemplatesPath        string       `json:"templates_path,omitempty" mapstructure:"templates_path"`
	SaveDetailedMetadata bool         `json:"save_detailed_metadata" mapstructure:"save_detailed_metadata"`

	// RateLimitDelay is the pause between generations for paid models (default 2s).
	RateLimitDelay time.Duration `json:"rate_limit_delay" mapstructure:"rate_limit_delay" validate:"gte=0"`

	// FreeTierDelayMin and FreeTierDelayMax bound the randomized pause used
	// when the model name marks a free, rate-limited tier.
	FreeTierDelayMin time.Duration `json:"free_tier_delay_min" mapstructure:"free_tier_delay_min" validate:"gte=0"`
	FreeTierDelayMax time.Duration `json:"free_tier_delay_max" mapstructure:"free_tier_delay_max" validate:"gtefield=FreeTierDelayMin"`

	LogLevel  string `json:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	LogFormat string `json:"log_format" mapstructure:"log_format" validate:"omitempty,oneof=text json"`

	// MetricsAddr, when set, serves Prometheus metrics on this address.
	MetricsAddr string `json:"metrics_addr,omitempty" mapstructure:"metrics_addr"`
}
