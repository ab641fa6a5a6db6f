package pipeline

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/safedrive-ia/safedrive/internal/model"
)

// NormalizeLabel trims and lower-cases a label for set membership.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// Distribution counts labels as observed, in first-seen order.
func Distribution[E any](events []E, label func(E) string) model.CategoryDistribution {
	idx := make(map[string]int)
	dist := model.CategoryDistribution{Entries: []model.CategoryCount{}}
	for _, e := range events {
		l := label(e)
		i, ok := idx[l]
		if !ok {
			i = len(dist.Entries)
			idx[l] = i
			dist.Entries = append(dist.Entries, model.CategoryCount{Label: l})
		}
		dist.Entries[i].Count++
		dist.Total++
	}
	return dist
}

// TopK returns the k most frequent entries by count descending. Ties keep
// first-seen order.
func TopK(dist model.CategoryDistribution, k int) ([]model.CategoryCount, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: top-k size %d", ErrInvalidArgument, k)
	}
	ranked := slices.Clone(dist.Entries)
	slices.SortStableFunc(ranked, func(a, b model.CategoryCount) int {
		return b.Count - a.Count
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked, nil
}

// MostCommon returns the most frequent label, or fallback for an empty
// distribution.
func MostCommon(dist model.CategoryDistribution, fallback string) string {
	top, _ := TopK(dist, 1)
	if len(top) == 0 {
		return fallback
	}
	return top[0].Label
}

// PositiveShare returns the percentage of events whose normalized label is
// in positive, rounded to one decimal. It is 0 for no events.
func PositiveShare[E any](events []E, label func(E) string, positive []string) float64 {
	if len(events) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(positive))
	for _, p := range positive {
		set[NormalizeLabel(p)] = struct{}{}
	}
	matching := 0
	for _, e := range events {
		if _, ok := set[NormalizeLabel(label(e))]; ok {
			matching++
		}
	}
	return Round1(float64(matching) / float64(len(events)) * 100)
}

// DistributionBy groups events by key and computes a distribution per
// group. Groups appear in first-seen order and are named by the first
// event seen in each.
func DistributionBy[E any](events []E, key func(E) int64, name func(E) string, label func(E) string) []model.GroupDistribution {
	idx := make(map[int64]int)
	var groups [][]E
	for _, e := range events {
		k := key(e)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], e)
	}

	out := make([]model.GroupDistribution, len(groups))
	for i, g := range groups {
		out[i] = model.GroupDistribution{
			ID:           key(g[0]),
			Group:        name(g[0]),
			Distribution: Distribution(g, label),
		}
	}
	return out
}

// Emotion returns the raw label of an emotion event.
func Emotion(e model.EmotionEvent) string { return e.Emotion }

// AlertType returns the alert type of a fatigue event.
func AlertType(e model.FatigueEvent) string { return e.AlertType }
