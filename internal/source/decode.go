package source

import (
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/safedrive-ia/safedrive/internal/model"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses the timestamp formats produced by the supported
// backends. Zone-less values are UTC. Unparseable input yields the zero
// time, which falls outside every window.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func get(r Row, field string) gjson.Result {
	return gjson.GetBytes(r, field)
}

// DecodeDriver decodes a drivers row.
func DecodeDriver(r Row) model.Driver {
	return model.Driver{
		ID:        get(r, "driver_id").Int(),
		Name:      get(r, "driver_name").String(),
		Email:     get(r, "driver_email").String(),
		CreatedAt: ParseTime(get(r, "created_at").String()),
	}
}

// DecodeSession decodes a driver_sessions row.
func DecodeSession(r Row) model.Session {
	return model.Session{
		ID:       get(r, "session_id").Int(),
		DriverID: get(r, "driver_id").Int(),
	}
}

// DecodeFatigueEvent decodes a fatigue_events row. A missing alarm flag is
// false; a missing, null, or negative duration is left unset.
func DecodeFatigueEvent(r Row) model.FatigueEvent {
	return model.FatigueEvent{
		ID:               get(r, "event_id").Int(),
		SessionID:        get(r, "session_id").Int(),
		EventTime:        ParseTime(get(r, "event_time").String()),
		AlertType:        get(r, "alert_type").String(),
		EyeClosedSeconds: duration(get(r, "eye_closed_seconds")),
		AlarmTriggered:   get(r, "alarm_triggered").Bool(),
	}
}

// DecodeEmotionEvent decodes an emotions row.
func DecodeEmotionEvent(r Row) model.EmotionEvent {
	return model.EmotionEvent{
		ID:        get(r, "emotion_id").Int(),
		SessionID: get(r, "session_id").Int(),
		EventTime: ParseTime(get(r, "event_time").String()),
		Emotion:   get(r, "emotion").String(),
	}
}

// DecodeIncidentReport decodes an incident_reports row.
func DecodeIncidentReport(r Row) model.IncidentReport {
	rep := model.IncidentReport{
		ID:           get(r, "report_id").Int(),
		IncidentDate: get(r, "incident_date").String(),
		IncidentTime: get(r, "incident_time").String(),
		Location:     get(r, "location").String(),
		Description:  get(r, "description").String(),
		DriverState:  get(r, "driver_state").String(),
		CreatedAt:    ParseTime(get(r, "created_at").String()),
	}
	if v := get(r, "driver_id"); v.Exists() && v.Type != gjson.Null {
		id := v.Int()
		rep.DriverID = &id
	}
	return rep
}

// DecodeAll decodes every row with fn.
func DecodeAll[T any](rows []Row, fn func(Row) T) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		out = append(out, fn(r))
	}
	return out
}

// SplitArray splits a JSON array body into rows. Non-object elements are
// skipped. A body that is not a complete JSON array is ErrMalformedBody.
func SplitArray(body []byte) ([]Row, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedBody)
	}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: expected an array, got %s", ErrMalformedBody, res.Type)
	}
	var rows []Row
	res.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			rows = append(rows, Row(v.Raw))
		}
		return true
	})
	return rows, nil
}

func duration(v gjson.Result) *float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 {
		return nil
	}
	return &f
}
