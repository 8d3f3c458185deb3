package docstore

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/timestamppb"
)

type arrayUnion struct{ values []any }

type arrayRemove struct{ values []any }

type increment struct{ delta int64 }

type serverTimestamp struct{}

// ArrayUnion appends the values that are not already present in the array field.
func ArrayUnion(values ...any) any {
	return arrayUnion{values: canonical(values).([]any)}
}

// ArrayRemove removes every occurrence of the values from the array field.
func ArrayRemove(values ...any) any {
	return arrayRemove{values: canonical(values).([]any)}
}

// Increment adds delta to the numeric field, treating a missing field as zero.
func Increment(delta int64) any {
	return increment{delta: delta}
}

// ServerTimestamp is replaced by the commit time of the write.
func ServerTimestamp() any {
	return serverTimestamp{}
}

type mutationKind int

const (
	mutSet mutationKind = iota
	mutMerge
	mutUpdate
	mutDelete
)

type mutation struct {
	kind   mutationKind
	path   string
	fields map[string]any
}

func (m mutation) validate() error {
	if _, _, err := splitDocPath(m.path); err != nil {
		return err
	}
	if m.kind == mutUpdate && len(m.fields) == 0 {
		return fmt.Errorf("update of %s: no fields", m.path)
	}
	return nil
}

// applyMutation computes the new document state. existing is nil when the
// document is missing; a nil result with deleted=true removes the document.
func applyMutation(existing map[string]any, m mutation, now *timestamppb.Timestamp) (next map[string]any, deleted bool, err error) {
	switch m.kind {
	case mutDelete:
		return nil, true, nil
	case mutSet:
		next = map[string]any{}
		for k, v := range m.fields {
			next[k] = resolve(nil, v, now)
		}
		return next, false, nil
	case mutMerge:
		next = copyData(existing)
		mergeInto(next, m.fields, now)
		return next, false, nil
	case mutUpdate:
		if existing == nil {
			return nil, false, fmt.Errorf("update %s: %w", m.path, ErrNotFound)
		}
		next = copyData(existing)
		for k, v := range m.fields {
			setDotted(next, k, v, now)
		}
		return next, false, nil
	}
	return nil, false, fmt.Errorf("unknown mutation kind %d", m.kind)
}

func mergeInto(dst map[string]any, fields map[string]any, now *timestamppb.Timestamp) {
	for k, v := range fields {
		if sub, ok := v.(map[string]any); ok {
			cur, isMap := dst[k].(map[string]any)
			if !isMap {
				cur = map[string]any{}
			}
			mergeInto(cur, sub, now)
			dst[k] = cur
			continue
		}
		dst[k] = resolve(dst[k], v, now)
	}
}

func setDotted(dst map[string]any, field string, v any, now *timestamppb.Timestamp) {
	parts := strings.Split(field, ".")
	cur := dst
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	last := parts[len(parts)-1]
	cur[last] = resolve(cur[last], v, now)
}

// resolve applies a field value against the current one, expanding mutators.
func resolve(current, v any, now *timestamppb.Timestamp) any {
	switch tv := v.(type) {
	case serverTimestamp:
		return &timestamppb.Timestamp{Seconds: now.GetSeconds(), Nanos: now.GetNanos()}
	case increment:
		n, _ := toInt64(current)
		return n + tv.delta
	case arrayUnion:
		arr := asArray(current)
		for _, e := range tv.values {
			if indexOf(arr, e) < 0 {
				arr = append(arr, deepCopy(e))
			}
		}
		return arr
	case arrayRemove:
		arr := asArray(current)
		out := make([]any, 0, len(arr))
		for _, e := range arr {
			if indexOf(tv.values, e) < 0 {
				out = append(out, e)
			}
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = resolve(nil, e, now)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = resolve(nil, e, now)
		}
		return out
	}
	return deepCopy(v)
}

func asArray(v any) []any {
	arr, ok := v.([]any)
	if !ok {
		return []any{}
	}
	return append([]any(nil), arr...)
}
