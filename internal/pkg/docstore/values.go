package docstore

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/campusconnect/campusconnect/internal/pkg/timestamp"
)

// canonical converts a caller supplied value into the representation stored
// documents use: map[string]any, []any, int64, float64, bool, string, nil,
// *timestamppb.Timestamp and the mutator sentinels.
func canonical(v any) any {
	switch tv := v.(type) {
	case nil:
		return nil
	case string, bool, int64, float64:
		return tv
	case int:
		return int64(tv)
	case int32:
		return int64(tv)
	case float32:
		return float64(tv)
	case json.Number:
		if n, err := tv.Int64(); err == nil {
			return n
		}
		f, _ := tv.Float64()
		return f
	case *timestamppb.Timestamp:
		if tv == nil {
			return nil
		}
		return proto.Clone(tv).(*timestamppb.Timestamp)
	case time.Time:
		return timestamppb.New(tv)
	case timestamp.Timestamp:
		return &timestamppb.Timestamp{Seconds: tv.Seconds, Nanos: tv.Nanoseconds}
	case *timestamp.Timestamp:
		if tv == nil {
			return nil
		}
		return &timestamppb.Timestamp{Seconds: tv.Seconds, Nanos: tv.Nanoseconds}
	case arrayUnion, arrayRemove, increment, serverTimestamp:
		return tv
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = canonical(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = canonical(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = canonical(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = canonical(iter.Value().Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return canonical(rv.Elem().Interface())
	}

	// Structs and anything else go through their JSON form.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil
	}
	return canonical(generic)
}

// canonicalFields canonicalizes every value of a field map.
func canonicalFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = canonical(v)
	}
	return out
}

// deepCopy copies maps and slices so snapshots never alias stored state.
func deepCopy(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = deepCopy(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = deepCopy(e)
		}
		return out
	case *timestamppb.Timestamp:
		if tv == nil {
			return nil
		}
		return proto.Clone(tv).(*timestamppb.Timestamp)
	}
	return v
}

func copyData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return deepCopy(data).(map[string]any)
}

// lookup resolves a dotted field path.
func lookup(data map[string]any, field string) (any, bool) {
	cur := any(data)
	for _, part := range strings.Split(field, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		return int64(f), err == nil
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	ta, aTS := a.(*timestamppb.Timestamp)
	tb, bTS := b.(*timestamppb.Timestamp)
	if aTS || bTS {
		return aTS && bTS && ta.GetSeconds() == tb.GetSeconds() && ta.GetNanos() == tb.GetNanos()
	}
	return reflect.DeepEqual(a, b)
}

func indexOf(arr []any, v any) int {
	for i, e := range arr {
		if valuesEqual(e, v) {
			return i
		}
	}
	return -1
}

// typeRank orders values of different kinds: null, bool, number, timestamp, string, other.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64, int:
		return 2
	case *timestamppb.Timestamp:
		return 3
	case string:
		return 4
	}
	return 5
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		}
		return 1
	case *timestamppb.Timestamp:
		bv := b.(*timestamppb.Timestamp)
		return timestamp.Timestamp{Seconds: av.GetSeconds(), Nanoseconds: av.GetNanos()}.
			Compare(timestamp.Timestamp{Seconds: bv.GetSeconds(), Nanoseconds: bv.GetNanos()})
	case string:
		return strings.Compare(av, b.(string))
	}
	if fa, ok := toFloat(a); ok {
		fb, _ := toFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return 0
}
