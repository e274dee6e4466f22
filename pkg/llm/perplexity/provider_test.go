package perplexity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crimson-crm-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPlaceholderKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"", true},
		{"   ", true},
		{"your_perplexity_api_key_here", true},
		{"PERPLEXITY=your_perplexity_api_key_here", true},
		{"pplx-b8c1c2e8c9d4f5a6aaaa", true},
		{"pplx-0123456789abcdef", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlaceholderKey(tt.key))
		})
	}
}

func TestSearchSendsRequestAndParsesResponse(t *testing.T) {
	var got chatRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "sonar-pro",
			"choices": [{"message": {"content": "Jane Doe is CFO at Acme."}}],
			"citations": ["https://www.forbes.com/profile/jane"],
			"search_results": [{"title": "Jane Doe - Forbes", "url": "https://www.forbes.com/profile/jane"}]
		}`))
	}))
	defer srv.Close()

	p := NewPerplexityProvider("pplx-real", srv.URL, "", time.Second)
	completion, err := p.Search(context.Background(),
		[]llm.Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "usr"}},
		llm.WithSearchDomains("forbes.com", "sec.gov"),
		llm.WithRecency("month"),
		llm.WithTopP(0.9),
		llm.WithFrequencyPenalty(1),
		llm.WithResponseSchema(map[string]interface{}{"type": "object"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "Bearer pplx-real", auth)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, 0.2, got.Temperature)
	assert.Equal(t, 1000, got.MaxTokens)
	assert.Equal(t, 0.9, got.TopP)
	assert.Equal(t, []string{"forbes.com", "sec.gov"}, got.SearchDomainFilter)
	assert.Equal(t, "month", got.SearchRecencyFilter)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Len(t, got.Messages, 2)

	assert.Equal(t, "Jane Doe is CFO at Acme.", completion.Content)
	assert.Equal(t, []string{"https://www.forbes.com/profile/jane"}, completion.Citations)
	require.Len(t, completion.SearchResults, 1)
	assert.Equal(t, "Jane Doe - Forbes", completion.SearchResults[0].Title)
}

func TestSearchReturnsAPIErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid key"}`))
	}))
	defer srv.Close()

	p := NewPerplexityProvider("pplx-real", srv.URL, "", time.Second)
	_, err := p.Search(context.Background(), []llm.Message{{Role: "user", Content: "x"}})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestSearchTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewPerplexityProvider("pplx-real", srv.URL, "", 50*time.Millisecond)
	start := time.Now()
	_, err := p.Search(context.Background(), []llm.Message{{Role: "user", Content: "x"}})

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSearchRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	p := NewPerplexityProvider("pplx-real", srv.URL, "", time.Second)
	_, err := p.Generate(context.Background(), "hello")
	assert.Error(t, err)
}
