package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/types/known/timestamppb"
)

const typeKey = "__type"

// encodeData turns a stored document into JSON, tagging timestamps so they
// survive the round trip through a JSONB column.
func encodeData(data map[string]any) ([]byte, error) {
	return json.Marshal(encodeValue(data))
}

func encodeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = encodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = encodeValue(e)
		}
		return out
	case *timestamppb.Timestamp:
		if tv == nil {
			return nil
		}
		return map[string]any{typeKey: "timestamp", "seconds": tv.GetSeconds(), "nanos": tv.GetNanos()}
	}
	return v
}

// decodeData is the inverse of encodeData.
func decodeData(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic map[string]any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	out, _ := decodeValue(generic).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

func decodeValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		if tv[typeKey] == "timestamp" {
			secs, _ := toInt64(tv["seconds"])
			nanos, _ := toInt64(tv["nanos"])
			return &timestamppb.Timestamp{Seconds: secs, Nanos: int32(nanos)}
		}
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = decodeValue(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = decodeValue(e)
		}
		return out
	case json.Number:
		return canonical(tv)
	}
	return v
}

// containment builds the JSONB containment document for the equality and
// array-contains filters of q, used to narrow rows before the in-process pass.
func containment(filters []Filter) ([]byte, bool) {
	doc := map[string]any{}
	for _, f := range filters {
		var v any
		switch f.Op {
		case OpEqual:
			// Numbers compare loosely in process; only push down exact kinds.
			if _, isNum := toFloat(f.Value); isNum {
				continue
			}
			v = encodeValue(f.Value)
		case OpArrayContains:
			v = []any{encodeValue(f.Value)}
		default:
			continue
		}
		setPath(doc, f.Field, v)
	}
	if len(doc) == 0 {
		return nil, false
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, false
	}
	return raw, true
}

func setPath(doc map[string]any, field string, v any) {
	cur := doc
	parts := strings.Split(field, ".")
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}
