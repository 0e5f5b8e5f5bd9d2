package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker"

	"mydailymath-pipeline/internal/config"
	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

// Batch sizing. Live batches are windowed after filtering; fallback batches
// are deliberately smaller so degraded responses carry less volume.
const (
	liveBatchSize         = 6
	liveBatchSizeFindMore = 8

	fallbackBatchSize         = 3
	fallbackBatchSizeFindMore = 4

	// The provider is asked for more candidates than one batch so that
	// exclusion filtering and dedup losses still leave a full window.
	rawResultCount         = 10
	rawResultCountFindMore = 15

	searchWindowDays         = 14
	searchWindowDaysFindMore = 30
)

// SearchOptions carries the caller-held pagination state into one search.
type SearchOptions struct {
	FindMore    bool
	ExcludeURLs []string
	Offset      int
}

// TavilyService is the search gateway. Its contract: Search never fails —
// any transport, status, or payload problem degrades to the fallback
// corpus, filtered and windowed by the same conventions as a live batch.
type TavilyService struct {
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	corpus  []models.SearchResult
	config  config.TavilyConfig
	logger  *logger.Logger
}

type tavilySearchRequest struct {
	APIKey            string   `json:"api_key"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeImages     bool     `json:"include_images"`
	IncludeRawContent bool     `json:"include_raw_content"`
	MaxResults        int      `json:"max_results"`
	IncludeDomains    []string `json:"include_domains"`
	ExcludeDomains    []string `json:"exclude_domains"`
	Days              int      `json:"days"`
}

type tavilySearchResponse struct {
	Results []tavilyRawResult `json:"results"`
}

type tavilyRawResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

func NewTavilyService(config config.TavilyConfig, corpus []models.SearchResult, log *logger.Logger) (*TavilyService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Tavily API key required")
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "tavily",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	service := &TavilyService{
		client:  &http.Client{Timeout: config.Timeout},
		breaker: breaker,
		corpus:  corpus,
		config:  config,
		logger:  log,
	}

	log.Info("Search Service Initialized Successfully - Tavily API",
		"base_url", config.BaseURL,
		"timeout", config.Timeout,
		"max_retries", config.MaxRetries,
		"fallback_corpus_size", len(corpus))

	return service, nil
}

// Search runs one provider call and returns the filtered, deduplicated,
// offset-windowed batch. The second return reports degraded mode: true when
// the fallback corpus served the batch instead of live results.
func (service *TavilyService) Search(ctx context.Context, query string, opts SearchOptions) ([]models.SearchResult, bool) {
	startTime := time.Now()

	raw, err := service.fetchWithRetry(ctx, query, opts.FindMore)
	if err != nil {
		service.logger.LogService("tavily", "search", time.Since(startTime), map[string]interface{}{
			"query":    query,
			"fallback": true,
		}, err)
		return service.fallbackBatch(opts), true
	}

	results := service.mapResults(raw)
	results = dedupeByURL(results)
	results = filterExcluded(results, opts.ExcludeURLs)
	results = window(results, opts.Offset, liveBatchFor(opts.FindMore))

	service.logger.LogService("tavily", "search", time.Since(startTime), map[string]interface{}{
		"query":          query,
		"raw_results":    len(raw),
		"batch_results":  len(results),
		"offset":         opts.Offset,
		"find_more":      opts.FindMore,
		"excluded_count": len(opts.ExcludeURLs),
	}, nil)

	return results, false
}

func (service *TavilyService) fetchWithRetry(ctx context.Context, query string, findMore bool) ([]tavilyRawResult, error) {
	operation := func() ([]tavilyRawResult, error) {
		raw, err := service.breaker.Execute(func() (interface{}, error) {
			return service.fetch(ctx, query, findMore)
		})
		if err != nil {
			if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return raw.([]tavilyRawResult), nil
	}

	maxTries := service.config.MaxRetries
	if maxTries < 1 {
		maxTries = 1
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(maxTries)))
}

func (service *TavilyService) fetch(ctx context.Context, query string, findMore bool) ([]tavilyRawResult, error) {
	maxResults := rawResultCount
	days := searchWindowDays
	if findMore {
		maxResults = rawResultCountFindMore
		days = searchWindowDaysFindMore
	}

	body, err := sonic.Marshal(tavilySearchRequest{
		APIKey:         service.config.APIKey,
		Query:          query,
		SearchDepth:    "advanced",
		MaxResults:     maxResults,
		IncludeDomains: []string{},
		ExcludeDomains: []string{},
		Days:           days,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, service.config.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := service.client.Do(request)
	if err != nil {
		return nil, models.WrapExternalError("TAVILY", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, models.NewExternalError("TAVILY_STATUS", fmt.Sprintf("Tavily API returned HTTP %d", response.StatusCode))
	}

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, models.WrapExternalError("TAVILY", err)
	}

	var parsed tavilySearchResponse
	if err := sonic.Unmarshal(payload, &parsed); err != nil {
		return nil, models.NewExternalError("TAVILY_DECODE", "malformed Tavily response body").WithCause(err)
	}

	return parsed.Results, nil
}

// mapResults normalizes raw provider records into the canonical shape.
// Mapping is fallible per item: a record without a url is dropped and
// logged, never failing the batch.
func (service *TavilyService) mapResults(raw []tavilyRawResult) []models.SearchResult {
	results := make([]models.SearchResult, 0, len(raw))

	for _, record := range raw {
		if record.URL == "" {
			service.logger.Warn("Dropping search result without url", "title", record.Title)
			continue
		}

		score := record.Score
		if score <= 0 {
			score = 0.5
		}

		results = append(results, models.SearchResult{
			Title:         record.Title,
			URL:           record.URL,
			Content:       record.Content,
			Score:         score,
			PublishedDate: parsePublishedDate(record.PublishedDate),
		})
	}

	return results
}

func parsePublishedDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
		"Mon, 02 Jan 2006 15:04:05 MST",
	}

	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed
		}
	}

	return nil
}

func (service *TavilyService) fallbackBatch(opts SearchOptions) []models.SearchResult {
	results := filterExcluded(service.corpus, opts.ExcludeURLs)
	results = window(results, opts.Offset, fallbackBatchFor(opts.FindMore))

	service.logger.Warn("Serving fallback corpus",
		"batch_results", len(results),
		"offset", opts.Offset,
		"find_more", opts.FindMore)

	return results
}

func liveBatchFor(findMore bool) int {
	if findMore {
		return liveBatchSizeFindMore
	}
	return liveBatchSize
}

func fallbackBatchFor(findMore bool) int {
	if findMore {
		return fallbackBatchSizeFindMore
	}
	return fallbackBatchSize
}

// dedupeByURL keeps the first occurrence of each url.
func dedupeByURL(results []models.SearchResult) []models.SearchResult {
	seen := make(map[string]bool, len(results))
	deduped := make([]models.SearchResult, 0, len(results))

	for _, result := range results {
		if seen[result.URL] {
			continue
		}
		seen[result.URL] = true
		deduped = append(deduped, result)
	}

	return deduped
}

func filterExcluded(results []models.SearchResult, excludeURLs []string) []models.SearchResult {
	if len(excludeURLs) == 0 {
		out := make([]models.SearchResult, len(results))
		copy(out, results)
		return out
	}

	excluded := make(map[string]bool, len(excludeURLs))
	for _, url := range excludeURLs {
		excluded[url] = true
	}

	filtered := make([]models.SearchResult, 0, len(results))
	for _, result := range results {
		if !excluded[result.URL] {
			filtered = append(filtered, result)
		}
	}

	return filtered
}

func window(results []models.SearchResult, offset int, size int) []models.SearchResult {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(results) {
		return []models.SearchResult{}
	}

	end := offset + size
	if end > len(results) {
		end = len(results)
	}

	return results[offset:end]
}
