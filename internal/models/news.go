package models

import "time"

// SearchResult is the canonical shape of one provider record after mapping.
// It lives for a single request; nothing persists it.
type SearchResult struct {
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	Content       string     `json:"content"`
	Score         float64    `json:"score"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
}

// NewsItem is the caller-facing item produced by the response assembler.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	Category    string `json:"category"`
	URL         string `json:"url,omitempty"`
}

// DiscoveryRequest carries the caller-held pagination and exclusion state on
// every call. ExcludeURLs only grows within a session; SearchOffset only
// grows. SessionID optionally keys a server-side exclusion store that is
// merged with (never replaces) the caller-supplied set.
type DiscoveryRequest struct {
	Message       string   `json:"message" binding:"required"`
	Topics        []string `json:"topics,omitempty"`
	OriginalQuery string   `json:"originalQuery,omitempty"`
	FindMore      bool     `json:"findMore,omitempty"`
	ExcludeURLs   []string `json:"excludeUrls,omitempty"`
	SearchOffset  int      `json:"searchOffset,omitempty"`
	SessionID     string   `json:"sessionId,omitempty"`
}

type DiscoveryResponse struct {
	Response    string     `json:"response"`
	NewsItems   []NewsItem `json:"newsItems"`
	SearchQuery string     `json:"searchQuery"`
	HasMore     bool       `json:"hasMore,omitempty"`
	Degraded    bool       `json:"degraded,omitempty"`
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatbotRequest struct {
	Message string        `json:"message" binding:"required"`
	History []ChatMessage `json:"history,omitempty"`
}

type ChatbotResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
