// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpusgen/pkg/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `{
	"target_word_count": 1000,
	"output_corpus_path": "out/corpus.txt",
	"state_file_path": "out/state.json",
	"api_base_url": "https://openrouter.ai/api/v1/chat/completions",
	"model_name": "meta-llama/llama-3.1-8b-instruct"
}`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.TargetWordCount)
	assert.Equal(t, 10.0, cfg.MaxGenerationCost)
	assert.Equal(t, 10, cfg.TextsPerStateSave)
	assert.True(t, cfg.SaveDetailedMetadata)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.RetryDelay)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 400, cfg.MaxTokens)
	assert.InDelta(t, 0.75, cfg.Temperature, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.RateLimitDelay)
	assert.Equal(t, types.StrategyGeneral, cfg.Strategy)
	assert.Equal(t, "out/state_metadata.jsonl", cfg.MetadataPath)
	assert.Empty(t, cfg.ProviderPreference)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"target_word_count": 2000000,
		"words_to_seed": 3,
		"output_corpus_path": "corpus.txt",
		"state_file_path": "state.json",
		"api_base_url": "https://example.test/v1/chat/completions",
		"model_name": "mistral/free",
		"provider_preference": ["nebius", " ", "together"],
		"max_generation_cost": 2.5,
		"texts_per_state_save": 5,
		"use_seed_words": true,
		"ecp_word_list_path": "ecp.csv",
		"save_detailed_metadata": false,
		"retry_delay": "250ms",
		"free_tier_delay_min": "10s",
		"free_tier_delay_max": "20s"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, types.StrategySeeded, cfg.Strategy)
	assert.Equal(t, []string{"nebius", "together"}, cfg.ProviderPreference)
	assert.Equal(t, 2.5, cfg.MaxGenerationCost)
	assert.False(t, cfg.SaveDetailedMetadata)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.FreeTierDelayMin)
	assert.Equal(t, 20*time.Second, cfg.FreeTierDelayMax)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CORPUSGEN_MODEL_NAME", "override/model")
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "override/model", cfg.ModelName)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid json", content: `{"target_word_count": `},
		{name: "missing target", content: `{
			"output_corpus_path": "c.txt", "state_file_path": "s.json",
			"api_base_url": "https://x.test", "model_name": "m"}`},
		{name: "bad url", content: `{"target_word_count": 10,
			"output_corpus_path": "c.txt", "state_file_path": "s.json",
			"api_base_url": "not a url", "model_name": "m"}`},
		{name: "seeded without word list", content: `{"target_word_count": 10,
			"output_corpus_path": "c.txt", "state_file_path": "s.json",
			"api_base_url": "https://x.test", "model_name": "m", "use_seed_words": true}`},
		{name: "spoken without titles", content: `{"target_word_count": 10,
			"output_corpus_path": "c.txt", "state_file_path": "s.json",
			"api_base_url": "https://x.test", "model_name": "m", "strategy": "spoken"}`},
		{name: "unknown strategy", content: `{"target_word_count": 10,
			"output_corpus_path": "c.txt", "state_file_path": "s.json",
			"api_base_url": "https://x.test", "model_name": "m", "strategy": "random"}`},
		{name: "inverted free tier band", content: `{"target_word_count": 10,
			"output_corpus_path": "c.txt", "state_file_path": "s.json",
			"api_base_url": "https://x.test", "model_name": "m",
			"free_tier_delay_min": "9s", "free_tier_delay_max": "1s"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "not found")
}

func TestMetadataPathFor(t *testing.T) {
	assert.Equal(t, "run/state_metadata.jsonl", MetadataPathFor("run/state.json"))
	assert.Equal(t, "run/state.ckpt_metadata.jsonl", MetadataPathFor("run/state.ckpt"))
}
