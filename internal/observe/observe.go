// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observe reports generation progress. The orchestrator calls an
// Observer at fixed points of its loop; sinks decide how to render them.
package observe

import (
	"log/slog"
	"math"
	"time"

	"github.com/pdiddy/corpusgen/pkg/types"
)

// Observer receives progress events from a generation run. Calls happen on
// the orchestrator's goroutine and should not block.
type Observer interface {
	// UnitGenerated is called after a unit has been committed to st and the corpus.
	UnitGenerated(meta types.StoryMetadata, st *types.State)

	// UnitFailed is called when a prompt produced no text.
	UnitFailed(f types.UnitFailure)

	// CheckpointSaved is called after st was written to disk.
	CheckpointSaved(st *types.State)

	// RunFinished is called once when the run stops.
	RunFinished(s types.RunSummary)
}

// MilestoneEvery is the request interval at which LogObserver logs throughput.
const MilestoneEvery = 100

// LogObserver writes progress lines to a slog.Logger.
type LogObserver struct {
	Log    *slog.Logger
	Target int

	// Now is used for throughput estimates; nil means time.Now.
	Now func() time.Time
}

// NewLogObserver returns a LogObserver reporting progress toward target words.
func NewLogObserver(log *slog.Logger, target int) *LogObserver {
	return &LogObserver{Log: log, Target: target}
}

func (o *LogObserver) UnitGenerated(meta types.StoryMetadata, st *types.State) {
	o.Log.Info("generated",
		"story_id", meta.StoryID,
		"genre", meta.Genre,
		"words", meta.WordCount,
		"total_words", st.TotalWordsGenerated,
		"target", o.Target,
		"progress", percent(st.TotalWordsGenerated, o.Target),
		"request_cost", round(meta.EstimatedCost, 6),
		"total_cost", round(st.EstimatedCost, 4))

	if st.TotalRequests > 0 && st.TotalRequests%MilestoneEvery == 0 {
		wph, eta := o.throughput(st)
		o.Log.Info("milestone",
			"requests", st.TotalRequests,
			"words_per_hour", round(wph, 0),
			"eta_hours", round(eta, 1))
	}
}

// throughput returns words per hour since st.StartTime and the hours left
// to reach the target at that rate.
func (o *LogObserver) throughput(st *types.State) (wph, eta float64) {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	elapsed := now().Sub(st.StartTime).Hours()
	if elapsed <= 0 {
		return 0, 0
	}
	wph = float64(st.TotalWordsGenerated) / elapsed
	if wph > 0 && o.Target > st.TotalWordsGenerated {
		eta = float64(o.Target-st.TotalWordsGenerated) / wph
	}
	return wph, eta
}

func (o *LogObserver) UnitFailed(f types.UnitFailure) {
	o.Log.Warn("no text generated, moving on",
		"genre", f.Genre,
		"outcome", f.Outcome,
		"attempts", f.Attempts)
}

func (o *LogObserver) CheckpointSaved(st *types.State) {
	o.Log.Info("progress saved",
		"total_words", st.TotalWordsGenerated,
		"total_cost", round(st.EstimatedCost, 4))
}

func (o *LogObserver) RunFinished(s types.RunSummary) {
	o.Log.Info("generation finished",
		"outcome", string(s.Outcome),
		"words", s.Words,
		"requests", s.Requests,
		"cost", round(s.Cost, 4),
		"cost_per_request", round(s.CostPerRequest(), 6),
		"words_per_dollar", round(s.WordsPerDollar(), 0),
		"generated", s.Generated,
		"failed", s.Failed,
		"elapsed", s.Elapsed.Round(time.Second).String())
}

// Multi fans every event out to each observer in order.
type Multi []Observer

func (m Multi) UnitGenerated(meta types.StoryMetadata, st *types.State) {
	for _, o := range m {
		o.UnitGenerated(meta, st)
	}
}

func (m Multi) UnitFailed(f types.UnitFailure) {
	for _, o := range m {
		o.UnitFailed(f)
	}
}

func (m Multi) CheckpointSaved(st *types.State) {
	for _, o := range m {
		o.CheckpointSaved(st)
	}
}

func (m Multi) RunFinished(s types.RunSummary) {
	for _, o := range m {
		o.RunFinished(s)
	}
}

// Nop discards every event.
type Nop struct{}

func (Nop) UnitGenerated(types.StoryMetadata, *types.State) {}
func (Nop) UnitFailed(types.UnitFailure) {}
func (Nop) CheckpointSaved(*types.State) {}
func (Nop) RunFinished(types.RunSummary) {}

func percent(n, of int) float64 {
	if of <= 0 {
		return 0
	}
	return round(100*float64(n)/float64(of), 2)
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
