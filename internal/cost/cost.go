// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cost estimates per-request spend and enforces the run's budget ceiling.
//
// The estimate is a heuristic: tokens are approximated as characters / 4 and
// prices are picked by a keyword match on the model name. It is accurate
// enough to stop a run near its ceiling, not to reconcile an invoice.
package cost

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// charsPerToken approximates tokenization for English text.
const charsPerToken = 4

// Rates holds USD prices per one million tokens.
type Rates struct {
	Input  float64
	Output float64
}

var (
	// CheapRates applies to models hosted on the discounted tier.
	CheapRates = Rates{Input: 0.10, Output: 0.30}

	// DefaultRates applies to every other model.
	DefaultRates = Rates{Input: 0.15, Output: 0.40}
)

// cheapKeywords select CheapRates when found in the lowercased model name.
var cheapKeywords = []string{"nebius", "llama"}

// RatesFor returns the price tier for a model identifier.
func RatesFor(model string) Rates {
	m := strings.ToLower(model)
	for _, kw := range cheapKeywords {
		if strings.Contains(m, kw) {
			return CheapRates
		}
	}
	return DefaultRates
}

// Tokens approximates the token count of s from its character count.
func Tokens(s string) int {
	return utf8.RuneCountInString(s) / charsPerToken
}

// Estimate returns the approximate USD cost of one prompt/response pair.
func Estimate(prompt, response, model string) float64 {
	r := RatesFor(model)
	in := float64(Tokens(prompt)) / 1_000_000 * r.Input
	out := float64(Tokens(response)) / 1_000_000 * r.Output
	return in + out
}

// Guard compares accumulated spend to the configured ceiling.
type Guard struct {
	Log *slog.Logger
}

// Exceeded reports whether st has reached cfg.MaxGenerationCost, logging
// either the remaining budget or the stop reason.
func (g Guard) Exceeded(st *types.State, cfg types.Config) bool {
	limit := cfg.MaxGenerationCost
	spent := st.EstimatedCost
	if spent >= limit {
		g.logger().Warn("budget limit reached, stopping generation",
			"spent_usd", round4(spent), "limit_usd", limit)
		return true
	}
	g.logger().Info("budget status",
		"spent_usd", round4(spent), "remaining_usd", round4(limit-spent))
	return false
}

func (g Guard) logger() *slog.Logger {
	if g.Log == nil {
		return slog.Default()
	}
	return g.Log
}

func round4(f float64) float64 {
	return float64(int64(f*10000+0.5)) / 10000
}
