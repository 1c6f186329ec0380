// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"time"
)

// HistoryCapacity is the number of recent StoryMetadata records kept in a State.
const HistoryCapacity = 100

// PromptUnit is one prompt produced by a prompt strategy. It is not persisted.
type PromptUnit struct {
	// Prompt is the full instruction sent to the model.
	Prompt string

	// Genre is the short label identifying the template that produced Prompt.
	Genre string

	// Seeds lists the vocabulary words embedded in Prompt, if any.
	Seeds []string
}

// StoryMetadata describes one successful generation.
type StoryMetadata struct {
	StoryID            string    `json:"story_id"`
	Genre              string    `json:"genre"`
	GenerationStrategy string    `json:"generation_strategy"`
	SeedsUsed          []string  `json:"seeds_used,omitempty"`
	WordCount          int       `json:"word_count"`
	CharacterCount     int       `json:"character_count"`
	Timestamp          time.Time `json:"timestamp"`
	PromptUsed         string    `json:"prompt_used"`
	EstimatedCost      float64   `json:"estimated_cost"`
}

// State is the durable progress record of a run. TotalWordsGenerated and
// EstimatedCost never decrease; Record is the only way they change.
type State struct {
	RunID               string    `json:"run_id,omitempty"`
	TotalWordsGenerated int       `json:"total_words_generated"`
	TotalRequests       int       `json:"total_requests"`
	EstimatedCost       float64   `json:"estimated_cost"`
	StartTime           time.Time `json:"start_time"`
	Stories             History   `json:"stories"`
}

// Record folds one successful generation into the counters and history.
// Negative word counts or costs are clamped to zero.
func (s *State) Record(meta StoryMetadata) {
	if meta.WordCount > 0 {
		s.TotalWordsGenerated += meta.WordCount
	}
	if meta.EstimatedCost > 0 {
		s.EstimatedCost += meta.EstimatedCost
	}
	s.TotalRequests++
	s.Stories.Push(meta)
}

// History is a fixed-capacity ring of StoryMetadata. When full, pushing
// evicts the oldest record. The zero value is ready to use.
type History struct {
	buf   []StoryMetadata
	start int
	size  int
}

// Push appends a copy of meta, evicting the oldest record when full.
func (h *History) Push(meta StoryMetadata) {
	if h.buf == nil {
		h.buf = make([]StoryMetadata, HistoryCapacity)
	}
	meta.SeedsUsed = append([]string(nil), meta.SeedsUsed...)
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = meta
		h.size++
		return
	}
	h.buf[h.start] = meta
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of records held.
func (h *History) Len() int {
	return h.size
}

// Items returns the records oldest first.
func (h *History) Items() []StoryMetadata {
	out := make([]StoryMetadata, 0, h.size)
	for i := 0; i < h.size; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}

// MarshalJSON encodes the history as a plain array, oldest first.
func (h History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Items())
}

// UnmarshalJSON decodes an array, keeping only the newest HistoryCapacity records.
func (h *History) UnmarshalJSON(data []byte) error {
	var items []StoryMetadata
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*h = History{}
	for _, it := range items {
		h.Push(it)
	}
	return nil
}
