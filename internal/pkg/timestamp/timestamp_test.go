package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestNormalizeConvertsTopLevelTimeValues(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 30, 0, 250, time.UTC)
	in := map[string]any{
		"createdAt":   timestamppb.New(at),
		"scheduledAt": at,
		"topic":       "Go generics",
		"completedAt": nil,
	}

	out := Normalize(in)

	assert.Equal(t, Timestamp{Seconds: at.Unix(), Nanoseconds: 250}, out["createdAt"])
	assert.Equal(t, Timestamp{Seconds: at.Unix(), Nanoseconds: 250}, out["scheduledAt"])
	assert.Equal(t, "Go generics", out["topic"])
	assert.Nil(t, out["completedAt"])
	assert.IsType(t, &timestamppb.Timestamp{}, in["createdAt"], "input must not be mutated")
}

func TestNormalizeIsShallow(t *testing.T) {
	nested := map[string]any{"createdAt": timestamppb.New(time.Unix(100, 0))}
	out := Normalize(map[string]any{"lastMessage": nested})

	inner, ok := out["lastMessage"].(map[string]any)
	require.True(t, ok)
	assert.IsType(t, &timestamppb.Timestamp{}, inner["createdAt"])
}

func TestNormalizeIsIdempotent(t *testing.T) {
	in := map[string]any{"createdAt": timestamppb.New(time.Unix(1700000000, 42))}

	once := Normalize(in)
	twice := Normalize(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, Timestamp{Seconds: 1700000000, Nanoseconds: 42}, twice["createdAt"])
}

func TestNormalizeNilPointerPassesThrough(t *testing.T) {
	var pb *timestamppb.Timestamp
	out := Normalize(map[string]any{"completedAt": pb})

	_, converted := out["completedAt"].(Timestamp)
	assert.False(t, converted)
	assert.Nil(t, Normalize(nil))
}

func TestCompare(t *testing.T) {
	a := Timestamp{Seconds: 10, Nanoseconds: 5}
	b := Timestamp{Seconds: 10, Nanoseconds: 6}
	c := Timestamp{Seconds: 11}

	assert.True(t, a.Before(b))
	assert.True(t, c.After(b))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, time.Unix(10, 5).UTC(), a.Time())
}
