// Package richtext reads the serialized editor documents stored as post bodies.
package richtext

import (
	"encoding/json"
	"strings"
)

// Op is one operation of an editor delta. Insert is a string for text and an
// object for embeds such as images.
type Op struct {
	Insert     any            `json:"insert"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Delta is the stored document form.
type Delta struct {
	Ops []Op `json:"ops"`
}

// Parse decodes a stored body. ok is false when raw is not a delta.
func Parse(raw string) (Delta, bool) {
	var d Delta
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return d, false
	}
	if err := json.Unmarshal([]byte(trimmed), &d); err != nil || d.Ops == nil {
		return Delta{}, false
	}
	return d, true
}

// PlainText renders the text inserts of a stored body. Anything that is not a
// delta is returned as it is.
func PlainText(raw string) string {
	d, ok := Parse(raw)
	if !ok {
		return raw
	}
	var b strings.Builder
	for _, op := range d.Ops {
		if s, ok := op.Insert.(string); ok {
			b.WriteString(s)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// IsBlank reports whether a body has no visible text.
func IsBlank(raw string) bool {
	return strings.TrimSpace(PlainText(raw)) == ""
}

// FromPlainText wraps text into a single-insert delta.
func FromPlainText(text string) string {
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	raw, _ := json.Marshal(Delta{Ops: []Op{{Insert: text}}})
	return string(raw)
}
