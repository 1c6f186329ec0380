//go:build mage

// Package main contains Mage build targets for corpusgen developer tooling.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"github.com/pdiddy/corpusgen/internal/config"
	"github.com/pdiddy/corpusgen/internal/state"
)

const (
	binDir  = "bin"
	binName = "corpusgen"
	cmdPkg  = "./cmd/corpusgen"
)

// projectDirs lists the working directories a default config expects.
var projectDirs = []string{
	"data",
	"output",
	"output/state",
}

// sampleConfig is written by Init when no config.json exists.
var sampleConfig = map[string]any{
	"target_word_count":      1000000,
	"words_to_seed":          5,
	"output_corpus_path":     "output/corpus.txt",
	"state_file_path":        "output/state/generation_state.json",
	"api_base_url":           "https://openrouter.ai/api/v1/chat/completions",
	"model_name":             "meta-llama/llama-3.1-8b-instruct",
	"provider_preference":    []string{},
	"max_generation_cost":    10.0,
	"texts_per_state_save":   10,
	"use_seed_words":         true,
	"ecp_word_list_path":     "data/ecp_words.csv",
	"save_detailed_metadata": true,
}

// Init creates the working directories and a sample config.json.
func Init() error {
	for _, dir := range projectDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		fmt.Println("  ", dir)
	}

	if _, err := os.Stat(config.DefaultPath); err == nil {
		fmt.Printf("%s exists, leaving it alone.\n", config.DefaultPath)
		return nil
	}
	data, err := json.MarshalIndent(sampleConfig, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(config.DefaultPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", config.DefaultPath, err)
	}
	fmt.Printf("Wrote %s. Set OPENROUTER_API_KEY before running.\n", config.DefaultPath)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Generate builds the binary and runs it against config.json.
func Generate() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "--config", config.DefaultPath)
}

// Stats prints the progress recorded in the checkpoint named by config.json.
func Stats() error {
	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(cfg.StateFilePath); errors.Is(err, os.ErrNotExist) {
		fmt.Printf("No checkpoint at %s yet.\n", cfg.StateFilePath)
		return nil
	}
	st, err := state.Load(cfg.StateFilePath)
	if err != nil {
		return err
	}

	pct := 0.0
	if cfg.TargetWordCount > 0 {
		pct = 100 * float64(st.TotalWordsGenerated) / float64(cfg.TargetWordCount)
	}
	fmt.Printf("Words:    %d / %d (%.2f%%)\n", st.TotalWordsGenerated, cfg.TargetWordCount, pct)
	fmt.Printf("Requests: %d\n", st.TotalRequests)
	fmt.Printf("Cost:     $%.4f / $%.2f\n", st.EstimatedCost, cfg.MaxGenerationCost)
	fmt.Printf("Started:  %s\n", st.StartTime.Format("2006-01-02 15:04:05"))
	return nil
}
