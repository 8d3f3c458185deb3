package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `validate:"required,notblank"`
	Mobile string `validate:"omitempty,phone"`
}

func TestRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, Register(v))

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"plain", sample{Name: "Ada"}, true},
		{"blank name", sample{Name: "   "}, false},
		{"international mobile", sample{Name: "Ada", Mobile: "+1 (617) 555-0100"}, true},
		{"local mobile", sample{Name: "Ada", Mobile: "0612345678"}, true},
		{"letters in mobile", sample{Name: "Ada", Mobile: "call me"}, false},
		{"short mobile", sample{Name: "Ada", Mobile: "123"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
