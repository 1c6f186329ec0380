// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTime(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"rfc3339", `"2026-03-01T12:00:00Z"`, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", `"2026-03-01T14:00:00.5+02:00"`, time.Date(2026, 3, 1, 12, 0, 0, 5e8, time.UTC)},
		{"naive with micros", `"2025-04-05T12:00:00.123456"`, time.Date(2025, 4, 5, 12, 0, 0, 123456000, time.Local)},
		{"naive with space", `"2025-04-05 12:00:00"`, time.Date(2025, 4, 5, 12, 0, 0, 0, time.Local)},
		{"epoch integer", `1712345678`, time.Unix(1712345678, 0)},
		{"epoch fraction", `1712345678.5`, time.Unix(1712345678, 5e8)},
		{"null", `null`, time.Time{}},
		{"empty string", `""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeTime(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDecodeTimeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{`"yesterday"`, `true`, `{}`} {
		_, err := decodeTime(json.RawMessage(raw))
		assert.Error(t, err, raw)
	}
}

func TestStateDecodesEarlierCheckpointFormat(t *testing.T) {
	data := `{
		"total_words_generated": 9000,
		"total_requests": 42,
		"estimated_cost": 0.0123,
		"start_time": 1712345678.123,
		"stories": [
			{"story_id": "story_0042", "genre": "Adventure", "seeds_used": ["river"],
			 "word_count": 210, "character_count": 1100,
			 "timestamp": "2025-04-05T12:00:00.123456",
			 "prompt_used": "Write...", "estimated_cost": 0.0003}
		]
	}`

	var st State
	require.NoError(t, json.Unmarshal([]byte(data), &st))
	assert.Equal(t, 9000, st.TotalWordsGenerated)
	assert.Equal(t, 42, st.TotalRequests)
	assert.Equal(t, int64(1712345678), st.StartTime.Unix())
	assert.InDelta(t, 123e6, float64(st.StartTime.Nanosecond()), 1e3)

	require.Equal(t, 1, st.Stories.Len())
	meta := st.Stories.Items()[0]
	assert.Equal(t, "story_0042", meta.StoryID)
	assert.Equal(t, []string{"river"}, meta.SeedsUsed)
	assert.True(t, time.Date(2025, 4, 5, 12, 0, 0, 123456000, time.Local).Equal(meta.Timestamp))
}

func TestStateRoundTripKeepsTimes(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	st := State{TotalWordsGenerated: 10, StartTime: start}
	st.Stories.Push(StoryMetadata{StoryID: "story_0001", Timestamp: start.Add(time.Minute)})

	data, err := json.Marshal(&st)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, start.Equal(back.StartTime))
	assert.True(t, start.Add(time.Minute).Equal(back.Stories.Items()[0].Timestamp))
	assert.Equal(t, 10, back.TotalWordsGenerated)
}
