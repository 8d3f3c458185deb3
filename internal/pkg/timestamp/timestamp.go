// Package timestamp turns store-side time values into plain comparable records.
package timestamp

import (
	"reflect"
	"time"
)

// Timestamp is the plain form of a store time value.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int32 `json:"nanoseconds"`
}

// converter is implemented by opaque store time values (timestamppb.Timestamp among them).
type converter interface {
	AsTime() time.Time
}

// FromTime builds a Timestamp from a time.Time.
func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time converts the record back to a time.Time in UTC.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanoseconds)).UTC()
}

// IsZero reports whether both components are zero.
func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Nanoseconds == 0
}

// Compare returns -1, 0 or 1.
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t.Seconds < o.Seconds:
		return -1
	case t.Seconds > o.Seconds:
		return 1
	case t.Nanoseconds < o.Nanoseconds:
		return -1
	case t.Nanoseconds > o.Nanoseconds:
		return 1
	}
	return 0
}

// Before reports whether t is strictly earlier than o.
func (t Timestamp) Before(o Timestamp) bool { return t.Compare(o) < 0 }

// After reports whether t is strictly later than o.
func (t Timestamp) After(o Timestamp) bool { return t.Compare(o) > 0 }

// Convert returns the plain form of v when v is a time value.
// Nil pointers and non-time values report false.
func Convert(v any) (Timestamp, bool) {
	switch tv := v.(type) {
	case nil:
		return Timestamp{}, false
	case Timestamp:
		return tv, true
	case *Timestamp:
		if tv == nil {
			return Timestamp{}, false
		}
		return *tv, true
	case time.Time:
		return FromTime(tv), true
	case *time.Time:
		if tv == nil {
			return Timestamp{}, false
		}
		return FromTime(*tv), true
	case converter:
		if isNilPointer(tv) {
			return Timestamp{}, false
		}
		return FromTime(tv.AsTime()), true
	}
	return Timestamp{}, false
}

// Normalize returns a copy of fields where every top-level time value is
// replaced by its plain form. Nested maps and slices are left as they are.
func Normalize(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if ts, ok := Convert(v); ok {
			out[k] = ts
			continue
		}
		out[k] = v
	}
	return out
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
