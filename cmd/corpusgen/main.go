// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the corpusgen CLI.
//
// The root command runs (or resumes) a generation run described by a JSON
// config file. Subcommands rebuild the metadata catalog and print the version.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpusgen/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd runs the generation loop.
var rootCmd = &cobra.Command{
	Use:   "corpusgen",
	Short: "Generate a text corpus from an LLM under a word target and budget",
	Long: `corpusgen sends prompts to an OpenAI-compatible chat-completions endpoint
and appends the generated texts to a corpus file until the configured word
target is reached or the estimated spend hits the budget ceiling.

Progress is checkpointed to the state file, so an interrupted run (Ctrl-C)
resumes where it stopped when started again with the same config.

The API key is read from OPENROUTER_API_KEY (a .env file in the working
directory is loaded first) or from .secrets/openrouter-api-key.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

func init() {
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "path to the JSON config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
