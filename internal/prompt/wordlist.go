// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package prompt

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/pdiddy/corpusgen/internal/config"
	"github.com/pdiddy/corpusgen/pkg/types"
)

// SeedColumn is the CSV header holding vocabulary words.
const SeedColumn = "spelling"

// LoadSeedWords reads the SeedColumn of a CSV word list, dropping empty
// cells and duplicates while keeping first-seen order.
func LoadSeedWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading word list header: %w", err)
	}
	col := -1
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == SeedColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("word list %s has no %q column", path, SeedColumn)
	}

	seen := make(map[string]bool)
	var words []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading word list: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		w := strings.TrimSpace(rec[col])
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
	}
	return words, nil
}

// LoadTitles reads one title per non-blank line.
func LoadTitles(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening titles: %w", err)
	}
	defer f.Close()

	var titles []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			titles = append(titles, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading titles: %w", err)
	}
	return titles, nil
}

// FromConfig loads whatever vocabulary cfg.Strategy needs and builds the
// strategy. Every failure wraps config.ErrConfig: a run cannot start without
// its vocabulary.
func FromConfig(cfg types.Config, rng *rand.Rand) (Strategy, error) {
	var seeded, general map[string]string
	if cfg.TemplatesPath != "" {
		tf, err := LoadTemplates(cfg.TemplatesPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
		}
		if len(tf.Seeded) > 0 {
			seeded = tf.Seeded
		}
		if len(tf.General) > 0 {
			general = tf.General
		}
	}

	var (
		s   Strategy
		err error
	)
	switch cfg.Strategy {
	case types.StrategySeeded:
		var words []string
		words, err = LoadSeedWords(cfg.ECPWordListPath)
		if err == nil {
			s, err = NewSeeded(rng, words, cfg.WordsToSeed, seeded)
		}
	case types.StrategyGeneral, "":
		s, err = NewGeneral(rng, general)
	case types.StrategyDynamic:
		s = NewDynamic(rng)
	case types.StrategySpoken:
		var titles []string
		titles, err = LoadTitles(cfg.TitlesPath)
		if err == nil {
			s, err = NewSpoken(rng, titles)
		}
	default:
		err = fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	return s, nil
}
