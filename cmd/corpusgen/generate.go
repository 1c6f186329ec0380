// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/corpusgen/internal/catalog"
	"github.com/pdiddy/corpusgen/internal/config"
	"github.com/pdiddy/corpusgen/internal/corpus"
	"github.com/pdiddy/corpusgen/internal/generate"
	"github.com/pdiddy/corpusgen/internal/logging"
	"github.com/pdiddy/corpusgen/internal/observe"
	"github.com/pdiddy/corpusgen/internal/orchestrator"
	"github.com/pdiddy/corpusgen/internal/prompt"
	"github.com/pdiddy/corpusgen/internal/secrets"
	"github.com/pdiddy/corpusgen/internal/state"
)

const (
	envFile    = ".env"
	secretsDir = secrets.DefaultDir
)

func runGenerate(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	if err := secrets.LoadDotenv(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	log.Info("loaded configuration", "path", cfgPath, "strategy", string(cfg.Strategy))

	apiKey, err := secrets.APIKey(secretsDir, log)
	if err != nil {
		return err
	}

	st, err := state.Load(cfg.StateFilePath)
	if err != nil {
		return err
	}
	if st.TotalRequests > 0 {
		log.Info("resuming from checkpoint", "path", cfg.StateFilePath,
			"words", st.TotalWordsGenerated, "requests", st.TotalRequests)
	}

	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	strategy, err := prompt.FromConfig(cfg, rng)
	if err != nil {
		return err
	}

	o := &orchestrator.Orchestrator{
		Config:   cfg,
		State:    st,
		Strategy: strategy,
		Client:   generate.New(cfg, apiKey, log),
		Corpus:   corpus.New(cfg),
		Log:      log,
		Rand:     rng,
	}

	observers := observe.Multi{observe.NewLogObserver(log, cfg.TargetWordCount)}
	if cfg.MetricsAddr != "" {
		m := observe.NewMetrics()
		observers = append(observers, m)
		stop := serveMetrics(cfg.MetricsAddr, m.Handler(), log)
		defer stop()
	}
	o.Observer = observers

	if cfg.CatalogPath != "" {
		store, err := catalog.Open(cfg.CatalogPath)
		if err != nil {
			return err
		}
		defer store.Close()
		o.Catalog = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := o.Run(ctx)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nFinished: %s\n", summary.Outcome)
	fmt.Fprintf(out, "Final word count:         %d\n", summary.Words)
	fmt.Fprintf(out, "Total requests:           %d\n", summary.Requests)
	fmt.Fprintf(out, "Estimated total cost:     $%.4f\n", summary.Cost)
	fmt.Fprintf(out, "Average cost per request: $%.6f\n", summary.CostPerRequest())
	fmt.Fprintf(out, "Words per dollar:         %.0f\n", summary.WordsPerDollar())
	fmt.Fprintf(out, "Corpus:                   %s\n", cfg.OutputCorpusPath)
	fmt.Fprintf(out, "State:                    %s\n", cfg.StateFilePath)
	return err
}

// serveMetrics starts a Prometheus endpoint at addr/metrics and returns a
// function that shuts it down.
func serveMetrics(addr string, h http.Handler, log *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}
}
