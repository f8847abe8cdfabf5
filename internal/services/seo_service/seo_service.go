package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pagecraft/internal/lib/logger/sl"
	"pagecraft/internal/notifier"
	"pagecraft/internal/transport/http/dto"

	gocache "github.com/patrickmn/go-cache"
)

// SEOService proxies the external analysis collaborator. The analyzer is
// advisory: a failed or refused analysis degrades to a warning and an
// empty result instead of failing the editor request.
type SEOService struct {
	log     *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
	cache   *gocache.Cache
	notify  notifier.Notifier
}

func NewSEOService(log *slog.Logger, baseURL, apiKey string, timeout, cacheTTL time.Duration, notify notifier.Notifier) *SEOService {
	return &SEOService{
		log:     log,
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		notify:  notify,
	}
}

func (s *SEOService) AnalyzeSEO(ctx context.Context, req dto.AnalyzeSEORequest) (dto.SEOResult, error) {
	return s.call(ctx, "seo_service.AnalyzeSEO", "/analyze", req)
}

func (s *SEOService) AnalyzeBlogSEO(ctx context.Context, req dto.AnalyzeBlogSEORequest) (dto.SEOResult, error) {
	return s.call(ctx, "seo_service.AnalyzeBlogSEO", "/analyze-blog", req)
}

func (s *SEOService) AnalyzeSiteSEO(ctx context.Context, req dto.AnalyzeSiteSEORequest) (dto.SEOResult, error) {
	return s.call(ctx, "seo_service.AnalyzeSiteSEO", "/analyze-site", req)
}

func (s *SEOService) SuggestKeywords(ctx context.Context, req dto.SuggestKeywordsRequest) (dto.SEOResult, error) {
	return s.call(ctx, "seo_service.SuggestKeywords", "/suggest-keywords", req)
}

// call posts the payload and unwraps the analyzer's {success, ...}
// envelope. success != true is a soft failure: the operator gets a
// warning, the caller gets an empty result and no error.
func (s *SEOService) call(ctx context.Context, op, path string, payload any) (dto.SEOResult, error) {
	log := s.log.With(slog.String("op", op))

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheKey := cacheKey(path, body)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(dto.SEOResult), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Error("analyzer request failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var envelope dto.SEOResult
	if err := json.Unmarshal(raw, &envelope); err != nil {
		log.Warn("analyzer returned malformed response", slog.Int("status", resp.StatusCode))
		s.notify.Warn("SEO analysis unavailable")
		return dto.SEOResult{}, nil
	}

	if ok, _ := envelope["success"].(bool); !ok {
		msg, _ := envelope["error"].(string)
		log.Warn("analyzer refused request",
			slog.Int("status", resp.StatusCode),
			slog.String("reason", msg),
		)
		s.notify.Warn("SEO analysis failed")
		return dto.SEOResult{}, nil
	}

	delete(envelope, "success")
	s.cache.SetDefault(cacheKey, envelope)
	return envelope, nil
}

func cacheKey(path string, body []byte) string {
	sum := sha256.Sum256(body)
	return path + ":" + hex.EncodeToString(sum[:8])
}
