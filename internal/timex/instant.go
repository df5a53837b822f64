package timex

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// layouts accepted for string timestamps, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant converts a raw timestamp value into a time.Time in loc.
//
// Accepted inputs: time.Time, strings in one of the layouts above, numeric
// strings and numbers holding epoch milliseconds. Anything else, including
// nil and the empty string, yields the zero time.
func ParseInstant(v any, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}

	switch value := v.(type) {
	case time.Time:
		if value.IsZero() {
			return time.Time{}
		}
		return value.In(loc)
	case *time.Time:
		if value == nil {
			return time.Time{}
		}
		return ParseInstant(*value, loc)
	case string:
		return parseString(value, loc)
	case float64:
		return fromEpochMillis(value, loc)
	case int64:
		return fromEpochMillis(float64(value), loc)
	case int:
		return fromEpochMillis(float64(value), loc)
	case json.Number:
		f, err := value.Float64()
		if err != nil {
			return time.Time{}
		}
		return fromEpochMillis(f, loc)
	default:
		return time.Time{}
	}
}

func parseString(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t.In(loc)
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpochMillis(f, loc)
	}

	return time.Time{}
}

func fromEpochMillis(ms float64, loc *time.Location) time.Time {
	if ms <= 0 || math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms)).In(loc)
}

// Instant is a time.Time that decodes from any form ParseInstant accepts,
// interpreting zone-less values in the local time zone.
type Instant struct {
	time.Time
}

func (i *Instant) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	i.Time = ParseInstant(v, time.Local)
	return nil
}

func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.Format(time.RFC3339Nano))
}
