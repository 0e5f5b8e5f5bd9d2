package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(logger.LogConfig{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return log
}

type stubPipeline struct {
	response *models.DiscoveryResponse
	err      error

	got *models.DiscoveryRequest
}

func (stub *stubPipeline) Discover(ctx context.Context, request *models.DiscoveryRequest) (*models.DiscoveryResponse, error) {
	stub.got = request
	return stub.response, stub.err
}

type stubAssistant struct {
	reply string
	err   error
}

func (stub *stubAssistant) GenerateAssistantReply(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	return stub.reply, stub.err
}

func newTestRouter(t *testing.T, pipeline DiscoveryPipeline, assistant AssistantGenerator, checkers map[string]HealthChecker) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := testLogger(t)
	return NewRouter(
		NewDiscoveryHandler(pipeline, log),
		NewChatbotHandler(assistant, log),
		NewHealthHandler(checkers),
		log,
	)
}

func postJSON(t *testing.T, router *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestDiscoverMissingMessage(t *testing.T) {
	router := newTestRouter(t, &stubPipeline{}, &stubAssistant{}, nil)

	recorder := postJSON(t, router, "/api/chat", `{"topics":["algebra"]}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var payload models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "Message is required", payload.Error)
}

func TestDiscoverMalformedBody(t *testing.T) {
	router := newTestRouter(t, &stubPipeline{}, &stubAssistant{}, nil)

	recorder := postJSON(t, router, "/api/chat", `{not json`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDiscoverNegativeSearchOffset(t *testing.T) {
	router := newTestRouter(t, &stubPipeline{}, &stubAssistant{}, nil)

	recorder := postJSON(t, router, "/api/chat", `{"message":"primes","searchOffset":-1}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestDiscoverSuccess(t *testing.T) {
	pipeline := &stubPipeline{response: &models.DiscoveryResponse{
		Response: "Educational analysis.",
		NewsItems: []models.NewsItem{{
			ID:          "math-news-1-0-0",
			Title:       "Prime Pattern Found",
			Summary:     "A new pattern.",
			Source:      "NATURE",
			PublishedAt: "3/5/2025",
			Category:    "mathematics",
			URL:         "https://www.nature.com/articles/prime",
		}},
		SearchQuery: "prime numbers",
		HasMore:     true,
	}}
	router := newTestRouter(t, pipeline, &stubAssistant{}, nil)

	recorder := postJSON(t, router, "/api/chat", `{
		"message": "prime numbers",
		"topics": ["number theory"],
		"findMore": true,
		"excludeUrls": ["https://example.com/seen"],
		"searchOffset": 6,
		"sessionId": "session-1"
	}`)

	require.Equal(t, http.StatusOK, recorder.Code)

	require.NotNil(t, pipeline.got)
	assert.Equal(t, "prime numbers", pipeline.got.Message)
	assert.Equal(t, []string{"number theory"}, pipeline.got.Topics)
	assert.True(t, pipeline.got.FindMore)
	assert.Equal(t, []string{"https://example.com/seen"}, pipeline.got.ExcludeURLs)
	assert.Equal(t, 6, pipeline.got.SearchOffset)
	assert.Equal(t, "session-1", pipeline.got.SessionID)

	var payload models.DiscoveryResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "Educational analysis.", payload.Response)
	require.Len(t, payload.NewsItems, 1)
	assert.Equal(t, "NATURE", payload.NewsItems[0].Source)
	assert.Equal(t, "prime numbers", payload.SearchQuery)
	assert.True(t, payload.HasMore)
}

func TestDiscoverPipelineFailure(t *testing.T) {
	pipeline := &stubPipeline{err: errors.New("GEMINI_ERROR: GEMINI call failed")}
	router := newTestRouter(t, pipeline, &stubAssistant{}, nil)

	recorder := postJSON(t, router, "/api/chat", `{"message":"primes"}`)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)

	var payload models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "Failed to process your request", payload.Error)
	assert.Contains(t, payload.Details, "GEMINI")
}
