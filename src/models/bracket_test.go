package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		ranges  BracketRanges
		wantErr string
	}{
		{"empty", nil, "empty"},
		{"nonzero start", BracketRanges{{Lower: 5, Upper: Unbounded, Rate: 0.1}}, "first bracket"},
		{"inverted", BracketRanges{{Lower: 0, Upper: 0, Rate: 0.1}}, "not above"},
		{"gap", BracketRanges{{Lower: 0, Upper: 10, Rate: 0.1}, {Lower: 20, Upper: Unbounded, Rate: 0.2}}, "gap"},
		{"overlap", BracketRanges{{Lower: 0, Upper: 10, Rate: 0.1}, {Lower: 5, Upper: Unbounded, Rate: 0.2}}, "overlaps"},
		{"bounded top", BracketRanges{{Lower: 0, Upper: 10, Rate: 0.1}}, "bounded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ranges.Normalize()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	s, err := BracketRanges{{Lower: 0, Upper: 10, Rate: 0.1}, {Lower: 10, Upper: Unbounded, Rate: 0.2}}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Schedule{{Lower: 0, Rate: 0.1}, {Lower: 10, Rate: 0.2}}, s)
	assert.Equal(t, 0.2, s.TopRate())
}

func TestNewSchedule(t *testing.T) {
	s := NewSchedule([]int64{0, 100}, []float64{0.1, 0.2})
	assert.Equal(t, Schedule{{Lower: 0, Rate: 0.1}, {Lower: 10000, Rate: 0.2}}, s)
	assert.Panics(t, func() { NewSchedule([]int64{0}, []float64{0.1, 0.2}) })
}

func TestScheduleYAMLRangeMissingUpper(t *testing.T) {
	var s Schedule
	err := yaml.Unmarshal([]byte("- {lower: 0, rate: 0.1}\n- {lower: 10, upper: 20, rate: 0.2}\n"), &s)
	assert.ErrorContains(t, err, "bracket 0 has no upper bound")
}
