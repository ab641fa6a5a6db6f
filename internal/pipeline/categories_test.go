package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safedrive-ia/safedrive/internal/model"
)

var positiveSet = []string{"feliz", "alerta", "calmado"}

func emotions(labels ...string) []model.EmotionEvent {
	out := make([]model.EmotionEvent, len(labels))
	for i, l := range labels {
		out[i] = model.EmotionEvent{ID: int64(i + 1), SessionID: int64(i%2 + 1), Emotion: l}
	}
	return out
}

func TestDistributionAndPositiveShare(t *testing.T) {
	events := emotions("feliz", "alerta", "feliz", "triste")

	dist := Distribution(events, Emotion)
	want := model.CategoryDistribution{
		Entries: []model.CategoryCount{{Label: "feliz", Count: 2}, {Label: "alerta", Count: 1}, {Label: "triste", Count: 1}},
		Total:   4,
	}
	if diff := cmp.Diff(want, dist); diff != "" {
		t.Errorf("distribution mismatch (-want +got):\n%s", diff)
	}
	assert.InDelta(t, 75.0, PositiveShare(events, Emotion, positiveSet), 1e-9)
}

func TestDistributionKeepsObservedCasing(t *testing.T) {
	dist := Distribution(emotions("Feliz", "feliz", " feliz "), Emotion)
	assert.Len(t, dist.Entries, 3)
	assert.Equal(t, "Feliz", dist.Entries[0].Label)

	// Classification still treats them as one positive label.
	assert.InDelta(t, 100.0, PositiveShare(emotions("Feliz", "feliz", " feliz "), Emotion, positiveSet), 1e-9)
}

func TestPositiveShareEmptyAndMonotone(t *testing.T) {
	assert.Zero(t, PositiveShare(emotions(), Emotion, positiveSet))

	labels := []string{"triste", "enojado"}
	prev := PositiveShare(emotions(labels...), Emotion, positiveSet)
	for i := 0; i < 5; i++ {
		labels = append(labels, "calmado")
		cur := PositiveShare(emotions(labels...), Emotion, positiveSet)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestPositiveShareRoundsToOneDecimal(t *testing.T) {
	assert.InDelta(t, 33.3, PositiveShare(emotions("feliz", "triste", "triste"), Emotion, positiveSet), 1e-9)
	assert.InDelta(t, 66.7, PositiveShare(emotions("feliz", "alerta", "triste"), Emotion, positiveSet), 1e-9)
}

func TestTopKTiesKeepFirstSeen(t *testing.T) {
	dist := Distribution(emotions("triste", "feliz", "alerta", "feliz", "alerta", "calmado"), Emotion)

	top, err := TopK(dist, 3)
	require.NoError(t, err)
	assert.Equal(t, []model.CategoryCount{{Label: "feliz", Count: 2}, {Label: "alerta", Count: 2}, {Label: "triste", Count: 1}}, top)

	all, err := TopK(dist, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	// The source distribution is not reordered.
	assert.Equal(t, "triste", dist.Entries[0].Label)

	_, err = TopK(dist, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestMostCommon(t *testing.T) {
	assert.Equal(t, "Ninguna", MostCommon(Distribution(emotions(), Emotion), "Ninguna"))
	assert.Equal(t, "alerta", MostCommon(Distribution(emotions("alerta", "feliz"), Emotion), "Ninguna"))
}

func TestDistributionBy(t *testing.T) {
	events := emotions("feliz", "triste", "feliz", "alerta")
	names := map[int64]string{1: "Ana", 2: "Luis"}
	key := func(e model.EmotionEvent) int64 { return e.SessionID }
	name := func(e model.EmotionEvent) string { return names[e.SessionID] }

	groups := DistributionBy(events, key, name, Emotion)
	require.Len(t, groups, 2)
	assert.Equal(t, int64(1), groups[0].ID)
	assert.Equal(t, "Ana", groups[0].Group)
	assert.Equal(t, 2, groups[0].Distribution.Count("feliz"))
	assert.Equal(t, "Luis", groups[1].Group)
	assert.Equal(t, 1, groups[1].Distribution.Count("triste"))
	assert.Equal(t, 1, groups[1].Distribution.Count("alerta"))
}

func TestDistributionByKeepsSameNamedGroupsApart(t *testing.T) {
	events := emotions("feliz", "triste", "feliz", "alerta")
	key := func(e model.EmotionEvent) int64 { return e.SessionID }
	name := func(model.EmotionEvent) string { return "Ana" }

	groups := DistributionBy(events, key, name, Emotion)
	require.Len(t, groups, 2)
	assert.Equal(t, "Ana", groups[0].Group)
	assert.Equal(t, "Ana", groups[1].Group)
	assert.NotEqual(t, groups[0].ID, groups[1].ID)
	assert.Equal(t, 2, groups[0].Distribution.Total)
	assert.Equal(t, 2, groups[1].Distribution.Total)
}
