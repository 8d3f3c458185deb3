package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func TestQueryApplyOrdersAndLimits(t *testing.T) {
	docs := []Document{
		{ID: "t1", Path: "testimonials/t1", Data: map[string]any{"createdAt": timestamppb.New(time.Unix(10, 0))}},
		{ID: "t2", Path: "testimonials/t2", Data: map[string]any{"createdAt": timestamppb.New(time.Unix(30, 0))}},
		{ID: "t3", Path: "testimonials/t3", Data: map[string]any{"createdAt": timestamppb.New(time.Unix(20, 0))}},
		{ID: "t4", Path: "testimonials/t4", Data: map[string]any{"quote": "no date"}},
	}

	out := Collection("testimonials").OrderBy("createdAt", Desc).LimitTo(2).apply(docs)

	require.Len(t, out, 2)
	assert.Equal(t, "t2", out[0].ID)
	assert.Equal(t, "t3", out[1].ID)
}

func TestQueryKeyDistinguishesParameters(t *testing.T) {
	a := Collection("notifications").Where("recipientId", OpEqual, "u1")
	b := Collection("notifications").Where("recipientId", OpEqual, "u2")

	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), Collection("notifications").Where("recipientId", OpEqual, "u1").Key())
	assert.NotEqual(t, CollectionGroup("posts").Key(), Collection("posts").Key())
}

func TestWhereDoesNotShareFilters(t *testing.T) {
	base := Collection("users").Where("college", OpEqual, "MIT")
	a := base.Where("year", OpEqual, "1")
	b := base.Where("year", OpEqual, "2")

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "1", a.Filters[1].Value)
	assert.Equal(t, "2", b.Filters[1].Value)
}

func TestCompareValuesAcrossKinds(t *testing.T) {
	assert.Equal(t, -1, compareValues(nil, "a"))
	assert.Equal(t, -1, compareValues(int64(1), 2.5))
	assert.Equal(t, 1, compareValues("b", "a"))
	assert.True(t, valuesEqual(int64(3), 3.0))
	assert.False(t, valuesEqual("3", int64(3)))
}

func TestCanonical(t *testing.T) {
	type named string
	at := time.Unix(50, 7)

	assert.Equal(t, []any{"a", "b"}, canonical([]string{"a", "b"}))
	assert.Equal(t, int64(4), canonical(4))
	assert.Equal(t, "x", canonical(named("x")))
	assert.Equal(t, map[string]any{"k": int64(1)}, canonical(map[string]int{"k": 1}))

	ts := canonical(at).(*timestamppb.Timestamp)
	assert.Equal(t, int64(50), ts.GetSeconds())
	assert.Equal(t, int32(7), ts.GetNanos())

	type payload struct {
		Text string `json:"text"`
	}
	assert.Equal(t, map[string]any{"text": "hi"}, canonical(payload{Text: "hi"}))
}
