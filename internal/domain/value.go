package domain

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimestampLayout = "2006-01-02T15:04:05"
)

// DefaultBaseDate anchors relative dates when no base date is configured.
var DefaultBaseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindText
	KindUUID
	KindDate
	KindTime
	KindTimestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindUUID:
		return "uuid"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindTimestamp:
		return "timestamp"
	}
	return "unknown"
}

// Value is the single runtime value produced for a column. The zero Value is Null.
// Dates, times and timestamps are naive and stored in UTC.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	t    time.Time
}

// Row maps lowercased column names to generated values.
type Row map[string]Value

func Null() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

func TextValue(s string) Value { return Value{kind: KindText, s: s} }

func UUIDValue(s string) Value { return Value{kind: KindUUID, s: s} }

func DateValue(t time.Time) Value {
	t = t.UTC()
	return Value{kind: KindDate, t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// TimeValue keeps only the clock part of t.
func TimeValue(t time.Time) Value {
	t = t.UTC()
	return Value{kind: KindTime, t: time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

// TimeOfDay builds a time value from seconds since midnight, wrapped into one day.
func TimeOfDay(seconds int64) Value {
	seconds %= 86400
	if seconds < 0 {
		seconds += 86400
	}
	return Value{kind: KindTime, t: time.Date(0, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seconds) * time.Second)}
}

func TimestampValue(t time.Time) Value {
	return Value{kind: KindTimestamp, t: t.UTC().Truncate(time.Second)}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float reports ints and floats as float64.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Text reports text and uuid values as a string.
func (v Value) Text() (string, bool) {
	switch v.kind {
	case KindText, KindUUID:
		return v.s, true
	}
	return "", false
}

// Date reports dates and the date part of timestamps.
func (v Value) Date() (time.Time, bool) {
	switch v.kind {
	case KindDate:
		return v.t, true
	case KindTimestamp:
		return time.Date(v.t.Year(), v.t.Month(), v.t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

func (v Value) Clock() (time.Time, bool) { return v.t, v.kind == KindTime }

func (v Value) Timestamp() (time.Time, bool) { return v.t, v.kind == KindTimestamp }

// SecondsOfDay is only meaningful for time values.
func (v Value) SecondsOfDay() int64 {
	return int64(v.t.Hour()*3600 + v.t.Minute()*60 + v.t.Second())
}

// String renders the value in its canonical text form. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindText, KindUUID:
		return v.s
	case KindDate:
		return v.t.Format(DateLayout)
	case KindTime:
		return v.t.Format(TimeLayout)
	case KindTimestamp:
		return v.t.Format(TimestampLayout)
	}
	return ""
}

// Key is the representation used to compare composite keys in unique sets.
func (v Value) Key() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.String()
}

func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.Key() == other.Key()
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindInt:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	}
	return json.Marshal(v.String())
}
