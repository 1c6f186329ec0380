// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/corpusgen/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	Now = func() time.Time { return fixedNow }
	os.Exit(m.Run())
}

func TestLoadMissingReturnsFresh(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	assert.Zero(t, st.TotalWordsGenerated)
	assert.Zero(t, st.TotalRequests)
	assert.Zero(t, st.EstimatedCost)
	assert.Equal(t, fixedNow, st.StartTime)
	assert.Zero(t, st.Stories.Len())
}

func TestSaveLoadRoundTripPreservesWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := &types.State{StartTime: fixedNow}
	st.Record(types.StoryMetadata{StoryID: "story_0001", WordCount: 9000, EstimatedCost: 0.5})

	require.NoError(t, Save(path, st))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, got.TotalWordsGenerated)
	assert.Equal(t, 1, got.TotalRequests)
	assert.InDelta(t, 0.5, got.EstimatedCost, 1e-12)
	assert.True(t, fixedNow.Equal(got.StartTime))
	require.Equal(t, 1, got.Stories.Len())
	assert.Equal(t, "story_0001", got.Stories.Items()[0].StoryID)
}

func TestLoadLegacyCheckpoint(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"total_words_generated": 4200}`), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4200, st.TotalWordsGenerated)
	assert.Zero(t, st.EstimatedCost)
	assert.Equal(t, fixedNow, st.StartTime)
}

func TestLoadEpochAndNaiveTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	data := `{"total_words_generated": 9000, "total_requests": 30, "estimated_cost": 0.1,
		"start_time": 1712345678.123,
		"stories": [{"story_id": "story_0030", "genre": "Mystery", "seeds_used": ["lantern"],
			"word_count": 300, "character_count": 1500,
			"timestamp": "2025-04-05T12:00:00.123456",
			"prompt_used": "Write a story.", "estimated_cost": 0.003}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, st.TotalWordsGenerated)
	assert.Equal(t, 30, st.TotalRequests)
	assert.WithinDuration(t, time.Unix(1712345678, 123000000), st.StartTime, time.Millisecond)

	require.Equal(t, 1, st.Stories.Len())
	meta := st.Stories.Items()[0]
	assert.Equal(t, "story_0030", meta.StoryID)
	assert.True(t, time.Date(2025, 4, 5, 12, 0, 0, 123456000, time.Local).Equal(meta.Timestamp))

	// The next save rewrites both times in RFC 3339 and they load back unchanged.
	require.NoError(t, Save(path, st))
	again, err := Load(path)
	require.NoError(t, err)
	assert.True(t, st.StartTime.Equal(again.StartTime))
	assert.True(t, meta.Timestamp.Equal(again.Stories.Items()[0].Timestamp))
}

func TestLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"total_words_generated": 12`},
		{"wrong type", `{"total_words_generated": "many"}`},
		{"negative", `{"total_words_generated": -5}`},
		{"unreadable start time", `{"total_words_generated": 1, "start_time": "last tuesday"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	st := &types.State{StartTime: fixedNow}

	for i := 0; i < 3; i++ {
		st.Record(types.StoryMetadata{WordCount: 10})
		require.NoError(t, Save(path, st))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	st := &types.State{StartTime: fixedNow, TotalWordsGenerated: 77}
	require.NoError(t, Save(path, st))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(77), raw["total_words_generated"])
	assert.Equal(t, []any{}, raw["stories"])
}

func TestSaveCapsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := &types.State{StartTime: fixedNow}
	for i := 1; i <= 150; i++ {
		st.Record(types.StoryMetadata{StoryID: fmt.Sprintf("story_%04d", i), WordCount: 1})
	}
	require.NoError(t, Save(path, st))

	got, err := Load(path)
	require.NoError(t, err)
	items := got.Stories.Items()
	require.Len(t, items, types.HistoryCapacity)
	assert.Equal(t, "story_0051", items[0].StoryID)
	assert.Equal(t, "story_0150", items[len(items)-1].StoryID)
	assert.Equal(t, 150, got.TotalWordsGenerated)
}
