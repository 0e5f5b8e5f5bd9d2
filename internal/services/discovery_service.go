package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

const (
	defaultCategory    = "mathematics"
	unknownSourceLabel = "Unknown Source"

	summaryLimit = 200

	// hasMore is a heuristic: a near-full batch suggests the provider
	// still has unseen inventory, not a precise remaining count.
	hasMoreThresholdInitial  = 4
	hasMoreThresholdFindMore = 6
)

// SearchGateway is the search side of the pipeline. Implementations never
// fail; the bool reports degraded (fallback corpus) mode.
type SearchGateway interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]models.SearchResult, bool)
}

// TextGenerator is the generation side. Failures here are terminal for the
// request.
type TextGenerator interface {
	AnalyzeSearchResults(ctx context.Context, userQuery string, results []models.SearchResult) (string, error)
	GenerateTopicInsight(ctx context.Context, topic string) (string, error)
}

// ExclusionStore optionally mirrors the caller-held exclusion set
// server-side, keyed by session id.
type ExclusionStore interface {
	ShownURLs(ctx context.Context, sessionID string) ([]string, error)
	RecordShown(ctx context.Context, sessionID string, urls []string) error
}

// DiscoveryService runs the content-discovery pipeline for one request:
// compose query, search, then synthesize the filtered batch into an
// educational response. It holds no cross-request state; pagination and
// exclusion state arrive with every call and correctness of "no repeats"
// rests on the caller growing that state monotonically.
type DiscoveryService struct {
	queryBuilder *QueryBuilder
	search       SearchGateway
	generator    TextGenerator
	sessions     ExclusionStore
	logger       *logger.Logger
	now          func() time.Time
}

func NewDiscoveryService(queryBuilder *QueryBuilder, search SearchGateway, generator TextGenerator, sessions ExclusionStore, log *logger.Logger) *DiscoveryService {
	return &DiscoveryService{
		queryBuilder: queryBuilder,
		search:       search,
		generator:    generator,
		sessions:     sessions,
		logger:       log,
		now:          time.Now,
	}
}

// Discover executes one discovery call. The only error it returns is a
// text-generation failure; search-provider problems degrade internally.
func (service *DiscoveryService) Discover(ctx context.Context, request *models.DiscoveryRequest) (*models.DiscoveryResponse, error) {
	startTime := time.Now()

	excludeURLs := service.mergeSessionExclusions(ctx, request)
	subject := composeSubject(request.Message, request.Topics)
	query := service.queryBuilder.Compose(subject, request.FindMore, excludeURLs)

	results, degraded := service.search.Search(ctx, query, SearchOptions{
		FindMore:    request.FindMore,
		ExcludeURLs: excludeURLs,
		Offset:      request.SearchOffset,
	})

	echoQuery := request.OriginalQuery
	if echoQuery == "" {
		echoQuery = request.Message
	}

	if len(results) == 0 {
		text, err := service.generator.GenerateTopicInsight(ctx, request.Message)
		if err != nil {
			return nil, err
		}

		service.logger.LogService("discovery", "discover", time.Since(startTime), map[string]interface{}{
			"query":    query,
			"items":    0,
			"degraded": degraded,
		}, nil)

		return &models.DiscoveryResponse{
			Response:    text,
			NewsItems:   []models.NewsItem{},
			SearchQuery: echoQuery,
			Degraded:    degraded,
		}, nil
	}

	text, err := service.generator.AnalyzeSearchResults(ctx, echoQuery, results)
	if err != nil {
		return nil, err
	}

	newsItems := service.assembleNewsItems(results, request)
	service.recordShown(ctx, request.SessionID, newsItems)

	threshold := hasMoreThresholdInitial
	if request.FindMore {
		threshold = hasMoreThresholdFindMore
	}

	service.logger.LogService("discovery", "discover", time.Since(startTime), map[string]interface{}{
		"query":     query,
		"items":     len(newsItems),
		"degraded":  degraded,
		"find_more": request.FindMore,
		"offset":    request.SearchOffset,
	}, nil)

	return &models.DiscoveryResponse{
		Response:    text,
		NewsItems:   newsItems,
		SearchQuery: echoQuery,
		HasMore:     len(results) >= threshold,
		Degraded:    degraded,
	}, nil
}

// mergeSessionExclusions unions the caller-supplied exclusion set with any
// server-side set for the session. A store read failure falls back to the
// caller's set alone; the caller-held contract keeps the request correct.
func (service *DiscoveryService) mergeSessionExclusions(ctx context.Context, request *models.DiscoveryRequest) []string {
	if service.sessions == nil || request.SessionID == "" {
		return request.ExcludeURLs
	}

	stored, err := service.sessions.ShownURLs(ctx, request.SessionID)
	if err != nil {
		service.logger.WithError(err).Warn("Failed to read session exclusions, using caller set only",
			"session_id", request.SessionID)
		return request.ExcludeURLs
	}

	seen := make(map[string]bool, len(request.ExcludeURLs))
	merged := make([]string, 0, len(request.ExcludeURLs)+len(stored))

	for _, url := range request.ExcludeURLs {
		if !seen[url] {
			seen[url] = true
			merged = append(merged, url)
		}
	}
	for _, url := range stored {
		if !seen[url] {
			seen[url] = true
			merged = append(merged, url)
		}
	}

	return merged
}

func (service *DiscoveryService) recordShown(ctx context.Context, sessionID string, items []models.NewsItem) {
	if service.sessions == nil || sessionID == "" {
		return
	}

	urls := make([]string, 0, len(items))
	for _, item := range items {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}

	if err := service.sessions.RecordShown(ctx, sessionID, urls); err != nil {
		service.logger.WithError(err).Warn("Failed to record shown urls", "session_id", sessionID)
	}
}

// assembleNewsItems maps each surviving search result to a caller-facing
// item. Item ids combine a millisecond timestamp with the caller-supplied
// offset and batch position so two calls cannot collide even when the
// fallback path hands out overlapping offsets.
func (service *DiscoveryService) assembleNewsItems(results []models.SearchResult, request *models.DiscoveryRequest) []models.NewsItem {
	category := defaultCategory
	if len(request.Topics) > 0 && request.Topics[0] != "" {
		category = request.Topics[0]
	}

	stamp := service.now().UnixMilli()

	items := make([]models.NewsItem, len(results))
	for i, result := range results {
		items[i] = models.NewsItem{
			ID:          fmt.Sprintf("math-news-%d-%d-%d", stamp, request.SearchOffset, i),
			Title:       result.Title,
			Summary:     summarize(result.Content),
			Source:      service.sourceLabel(result.URL),
			PublishedAt: publishedLabel(result.PublishedDate),
			Category:    category,
			URL:         result.URL,
		}
	}

	return items
}

// sourceLabel derives a display label from the item url: hostname without
// the leading www. or trailing .com, uppercased. A malformed url gets the
// placeholder label; it never fails the item.
func (service *DiscoveryService) sourceLabel(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		service.logger.Warn("Failed to parse item url for source label", "url", rawURL)
		return unknownSourceLabel
	}

	hostname := parsed.Hostname()
	hostname = strings.TrimPrefix(hostname, "www.")
	hostname = strings.TrimSuffix(hostname, ".com")

	return strings.ToUpper(hostname)
}

func publishedLabel(publishedDate *time.Time) string {
	if publishedDate == nil {
		return "Recently"
	}
	return publishedDate.Format("1/2/2006")
}

func summarize(content string) string {
	runes := []rune(content)
	if len(runes) <= summaryLimit {
		return content
	}
	return string(runes[:summaryLimit]) + "..."
}

func composeSubject(message string, topics []string) string {
	subject := "mathematics " + message
	if len(topics) > 0 {
		subject += " " + strings.Join(topics, " ")
	}
	return strings.TrimSpace(subject)
}
