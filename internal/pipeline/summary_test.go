package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safedrive-ia/safedrive/internal/model"
)

func eye(f float64) *float64 { return &f }

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, model.SummaryStats{}, SummarizeFatigue(nil))
}

func TestSummarizeFatigue(t *testing.T) {
	events := []model.FatigueEvent{
		{EyeClosedSeconds: eye(1.0), AlarmTriggered: true},
		{EyeClosedSeconds: eye(2.0)},
		{EyeClosedSeconds: nil, AlarmTriggered: true}, // missing duration counts as 0
		{EyeClosedSeconds: eye(0.5)},
	}

	got := SummarizeFatigue(events)
	assert.Equal(t, 4, got.Total)
	assert.InDelta(t, 0.9, got.Mean, 1e-9) // 3.5 / 4 = 0.875 -> 0.9
	assert.Equal(t, 2, got.CountWhere)
}

func TestSummarizeMissingDurationDefaultsToZero(t *testing.T) {
	got := SummarizeFatigue([]model.FatigueEvent{{EyeClosedSeconds: eye(4.0)}, {}})
	assert.Equal(t, 2, got.Total)
	assert.InDelta(t, 2.0, got.Mean, 1e-9)
}

func TestSummarizeEmotions(t *testing.T) {
	var events []model.EmotionEvent
	for _, e := range []string{"feliz", "alerta", "feliz", "triste"} {
		events = append(events, model.EmotionEvent{Emotion: e})
	}

	got := SummarizeEmotions(events, []string{"feliz", "alerta", "calmado"})
	assert.Equal(t, model.SummaryStats{Total: 4, PositiveShare: 75.0}, got)
	assert.Equal(t, model.SummaryStats{}, SummarizeEmotions(nil, []string{"feliz"}))
}

func TestSummarizeNilFuncs(t *testing.T) {
	got := Summarize([]int{1, 2, 3}, nil, nil)
	assert.Equal(t, model.SummaryStats{Total: 3}, got)
}
