package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSkills(t *testing.T) {
	skills, err := ParseSkills("```json\n{\"skills\":[\"Go\",\"SQL\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, skills)

	skills, err = ParseSkills("```{\"skills\":[\"Rust\"]}```")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rust"}, skills)

	skills, err = ParseSkills(`{"other":1}`)
	require.NoError(t, err)
	assert.Empty(t, skills)

	_, err = ParseSkills("not json")
	assert.Error(t, err)
}

func TestMergeSkillsDropsSentinelAndDuplicates(t *testing.T) {
	merged := MergeSkills([]string{"Go", "Public Speaking"}, []string{"go", FailureSentinel, " ", "Docker"})
	assert.Equal(t, []string{"Go", "Public Speaking", "Docker"}, merged)
}

type generateRequest struct {
	Contents []struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string          `json:"responseMimeType"`
		ResponseSchema   json.RawMessage `json:"responseSchema"`
	} `json:"generationConfig"`
}

func TestClientSuggestSkills(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/test-model:generateContent"), r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"skills\":[\"Data Analysis\"]}"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "k", Model: "test-model", Timeout: time.Second}, zerolog.Nop())
	skills := c.SuggestSkills(context.Background(), "statistics, football")

	assert.Equal(t, []string{"Data Analysis"}, skills)
	require.Len(t, got.Contents, 1)
	require.Len(t, got.Contents[0].Parts, 1)
	assert.Equal(t, "Based on the following interests, suggest 5 relevant professional skills: statistics, football.", got.Contents[0].Parts[0].Text)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
	assert.Contains(t, string(got.GenerationConfig.ResponseSchema), "skills")
}

func TestClientFailureReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second}, zerolog.Nop())
	assert.Equal(t, []string{FailureSentinel}, c.SuggestSkills(context.Background(), "x"))

	noKey := NewClient(Config{Endpoint: srv.URL}, zerolog.Nop())
	assert.Equal(t, []string{FailureSentinel}, noKey.SuggestSkills(context.Background(), "x"))
}

func TestClientUnusableAnswerReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"sorry"}]}}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "k", Model: "m", Timeout: time.Second}, zerolog.Nop())
	assert.Equal(t, []string{FailureSentinel}, c.SuggestSkills(context.Background(), "x"))
}
