// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrator runs the generation loop: it asks the prompt strategy
// for a unit, calls the generation client, commits successful text to the
// corpus and the state, checkpoints periodically, and stops on the word
// target, the budget ceiling, or an interrupt.
//
// The loop is single-threaded. State is mutated only between calls, so an
// interrupt that arrives while a request is in flight discards that
// request's result and the checkpoint never counts text the corpus lacks.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/corpusgen/internal/cost"
	"github.com/pdiddy/corpusgen/internal/generate"
	"github.com/pdiddy/corpusgen/internal/observe"
	"github.com/pdiddy/corpusgen/internal/prompt"
	"github.com/pdiddy/corpusgen/internal/state"
	"github.com/pdiddy/corpusgen/pkg/types"
)

// Generator turns a prompt into text. *generate.Client implements it.
type Generator interface {
	Generate(ctx context.Context, prompt string) generate.Result
}

// CorpusWriter appends committed text. *corpus.Writer implements it.
type CorpusWriter interface {
	Append(text string, meta types.StoryMetadata) error
}

// Catalog indexes committed metadata. *catalog.Store implements it.
type Catalog interface {
	Record(ctx context.Context, meta types.StoryMetadata) error
}

// Orchestrator owns one generation run. Config, State, Strategy, Client
// and Corpus are required; the rest have working defaults.
type Orchestrator struct {
	Config   types.Config
	State    *types.State
	Strategy prompt.Strategy
	Client   Generator
	Corpus   CorpusWriter

	// Catalog is optional. Failures to record are logged and ignored.
	Catalog Catalog

	Observer observe.Observer
	Log      *slog.Logger

	// Rand draws the free-tier delay.
	Rand *rand.Rand

	// Sleep pauses between units and returns early with ctx's error when
	// ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error

	Now  func() time.Time
	Save func(path string, st *types.State) error
}

func (o *Orchestrator) setDefaults() {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Observer == nil {
		o.Observer = observe.Nop{}
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Save == nil {
		o.Save = state.Save
	}
}

// run holds the per-invocation counters.
type run struct {
	generated int
	failed    int
	sinceSave int
}

// Run drives the loop until the target is reached, the budget is spent,
// ctx is cancelled, or a commit fails. It saves the checkpoint exactly once
// on the way out, whatever the reason. The returned summary is valid even
// when err is non-nil.
func (o *Orchestrator) Run(ctx context.Context) (types.RunSummary, error) {
	o.setDefaults()
	if o.State.RunID == "" {
		o.State.RunID = uuid.NewString()
	}
	o.Log = o.Log.With("run_id", o.State.RunID)
	begin := o.Now()

	o.Log.Info("starting generation",
		"strategy", o.Strategy.Name(),
		"model", o.Config.ModelName,
		"target_words", o.Config.TargetWordCount,
		"current_words", o.State.TotalWordsGenerated,
		"budget_usd", o.Config.MaxGenerationCost,
		"current_cost", o.State.EstimatedCost)

	var r run
	outcome, err := o.loop(ctx, &r)
	if outcome == types.OutcomeInterrupted {
		o.Log.Warn("generation interrupted")
	}

	if saveErr := o.Save(o.Config.StateFilePath, o.State); saveErr != nil {
		err = errors.Join(err, fmt.Errorf("saving final checkpoint: %w", saveErr))
		outcome = types.OutcomeFailed
	} else {
		o.Observer.CheckpointSaved(o.State)
	}

	summary := types.RunSummary{
		RunID:     o.State.RunID,
		Outcome:   outcome,
		Words:     o.State.TotalWordsGenerated,
		Requests:  o.State.TotalRequests,
		Cost:      o.State.EstimatedCost,
		Generated: r.generated,
		Failed:    r.failed,
		Elapsed:   o.Now().Sub(begin),
	}
	o.Observer.RunFinished(summary)
	return summary, err
}

func (o *Orchestrator) loop(ctx context.Context, r *run) (types.RunOutcome, error) {
	guard := cost.Guard{Log: o.Log}
	for {
		if ctx.Err() != nil {
			return types.OutcomeInterrupted, nil
		}
		if o.targetReached() {
			return types.OutcomeTargetReached, nil
		}
		if guard.Exceeded(o.State, o.Config) {
			return types.OutcomeBudgetExceeded, nil
		}

		unit := o.Strategy.Produce()
		o.Log.Debug("generating", "genre", unit.Genre, "seeds", unit.Seeds, "prompt", preview(unit.Prompt, 100))

		res := o.Client.Generate(ctx, unit.Prompt)
		if ctx.Err() != nil {
			if res.OK() {
				o.Log.Info("discarding text received after interrupt", "genre", unit.Genre)
			}
			return types.OutcomeInterrupted, nil
		}

		if !res.OK() {
			r.failed++
			o.Observer.UnitFailed(types.UnitFailure{
				Genre:    unit.Genre,
				Strategy: o.Strategy.Name(),
				Outcome:  string(res.Outcome),
				Attempts: res.Attempts,
				Detail:   res.Detail,
			})
		} else {
			if err := o.commit(ctx, unit, res.Text); err != nil {
				return types.OutcomeFailed, err
			}
			r.generated++
			r.sinceSave++

			if o.targetReached() {
				return types.OutcomeTargetReached, nil
			}
			if r.sinceSave >= o.Config.TextsPerStateSave {
				if err := o.Save(o.Config.StateFilePath, o.State); err != nil {
					return types.OutcomeFailed, fmt.Errorf("saving checkpoint: %w", err)
				}
				r.sinceSave = 0
				o.Observer.CheckpointSaved(o.State)
			}
		}

		if err := o.Sleep(ctx, o.delay()); err != nil {
			return types.OutcomeInterrupted, nil
		}
	}
}

// commit writes text to the corpus and then folds it into the state, so a
// failed append leaves the counters untouched.
func (o *Orchestrator) commit(ctx context.Context, unit types.PromptUnit, text string) error {
	meta := types.StoryMetadata{
		StoryID:            fmt.Sprintf("%s_%04d", o.Strategy.IDPrefix(), o.State.TotalRequests+1),
		Genre:              unit.Genre,
		GenerationStrategy: o.Strategy.Name(),
		SeedsUsed:          unit.Seeds,
		WordCount:          len(strings.Fields(text)),
		CharacterCount:     len([]rune(text)),
		Timestamp:          o.Now(),
		PromptUsed:         unit.Prompt,
		EstimatedCost:      cost.Estimate(unit.Prompt, text, o.Config.ModelName),
	}

	if err := o.Corpus.Append(text, meta); err != nil {
		return fmt.Errorf("committing %s: %w", meta.StoryID, err)
	}
	o.State.Record(meta)

	if o.Catalog != nil {
		if err := o.Catalog.Record(ctx, meta); err != nil {
			o.Log.Warn("catalog record failed", "story_id", meta.StoryID, "error", err)
		}
	}
	o.Observer.UnitGenerated(meta, o.State)
	return nil
}

func (o *Orchestrator) targetReached() bool {
	return o.State.TotalWordsGenerated >= o.Config.TargetWordCount
}

// delay is the pause before the next unit. Models on a free tier get a
// randomized pause in [FreeTierDelayMin, FreeTierDelayMax].
func (o *Orchestrator) delay() time.Duration {
	if !strings.Contains(strings.ToLower(o.Config.ModelName), "free") {
		return o.Config.RateLimitDelay
	}
	lo, hi := o.Config.FreeTierDelayMin, o.Config.FreeTierDelayMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(o.Rand.Int64N(int64(hi-lo)+1))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
