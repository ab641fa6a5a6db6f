package pipeline

import "github.com/safedrive-ia/safedrive/internal/model"

// Summarize returns the event count, the mean of value over all events,
// and the number of events matching where. An event without a value
// counts as 0 in the mean. Either func may be nil. The mean of no events
// is 0.
func Summarize[E any](events []E, value func(E) (float64, bool), where func(E) bool) model.SummaryStats {
	stats := model.SummaryStats{Total: len(events)}

	var sum float64
	for _, e := range events {
		if value != nil {
			if v, ok := value(e); ok {
				sum += v
			}
		}
		if where != nil && where(e) {
			stats.CountWhere++
		}
	}
	if value != nil && len(events) > 0 {
		stats.Mean = Round1(sum / float64(len(events)))
	}
	return stats
}

// SummarizeFatigue averages eye-closed seconds and counts triggered alarms.
func SummarizeFatigue(events []model.FatigueEvent) model.SummaryStats {
	return Summarize(events, EyeClosedSeconds, AlarmTriggered)
}

// SummarizeEmotions counts emotion readings and the share of them whose
// label is in positive.
func SummarizeEmotions(events []model.EmotionEvent, positive []string) model.SummaryStats {
	return model.SummaryStats{
		Total:         len(events),
		PositiveShare: PositiveShare(events, Emotion, positive),
	}
}

// EyeClosedSeconds returns the duration when present.
func EyeClosedSeconds(e model.FatigueEvent) (float64, bool) {
	if e.EyeClosedSeconds == nil {
		return 0, false
	}
	return *e.EyeClosedSeconds, true
}

// AlarmTriggered reports the alarm flag.
func AlarmTriggered(e model.FatigueEvent) bool { return e.AlarmTriggered }
