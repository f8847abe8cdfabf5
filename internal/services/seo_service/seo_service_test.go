package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pagecraft/internal/notifier"
	"pagecraft/internal/transport/http/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSEOService(t *testing.T, handler http.HandlerFunc) (*SEOService, *notifier.Recorder) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	recorder := &notifier.Recorder{}
	svc := NewSEOService(slog.Default(), srv.URL, "test-key", 5*time.Second, time.Minute, recorder)
	return svc, recorder
}

func TestSEOService_AnalyzeSEO(t *testing.T) {
	svc, recorder := newTestSEOService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req dto.AnalyzeSEORequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello world", req.Content)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"score":   72.5,
			"issues":  []string{"missing meta description"},
		})
	})

	result, err := svc.AnalyzeSEO(context.Background(), dto.AnalyzeSEORequest{Content: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, 72.5, result["score"])
	assert.NotContains(t, result, "success")
	assert.Empty(t, recorder.Warnings)
}

func TestSEOService_RefusalIsSoft(t *testing.T) {
	svc, recorder := newTestSEOService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "quota exceeded",
		})
	})

	result, err := svc.AnalyzeSEO(context.Background(), dto.AnalyzeSEORequest{Content: "hello"})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NotEmpty(t, recorder.Warnings)
}

func TestSEOService_MalformedResponseIsSoft(t *testing.T) {
	svc, recorder := newTestSEOService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream error</html>"))
	})

	result, err := svc.AnalyzeSEO(context.Background(), dto.AnalyzeSEORequest{Content: "hello"})
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NotEmpty(t, recorder.Warnings)
}

func TestSEOService_TransportErrorPropagates(t *testing.T) {
	recorder := &notifier.Recorder{}
	svc := NewSEOService(slog.Default(), "http://127.0.0.1:1", "", time.Second, time.Minute, recorder)

	_, err := svc.AnalyzeSEO(context.Background(), dto.AnalyzeSEORequest{Content: "hello"})
	assert.Error(t, err)
}

func TestSEOService_ResponsesAreCached(t *testing.T) {
	var calls atomic.Int32
	svc, _ := newTestSEOService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"success": true, "score": 50.0})
	})

	req := dto.SuggestKeywordsRequest{Topic: "gardening", Limit: 5}
	_, err := svc.SuggestKeywords(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.SuggestKeywords(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	// A different payload misses the cache.
	_, err = svc.SuggestKeywords(context.Background(), dto.SuggestKeywordsRequest{Topic: "cooking"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
