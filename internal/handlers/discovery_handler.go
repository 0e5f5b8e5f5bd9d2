package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

// DiscoveryPipeline is implemented by the discovery service; handler tests
// substitute a mock.
type DiscoveryPipeline interface {
	Discover(ctx context.Context, request *models.DiscoveryRequest) (*models.DiscoveryResponse, error)
}

type DiscoveryHandler struct {
	pipeline DiscoveryPipeline
	logger   *logger.Logger
}

func NewDiscoveryHandler(pipeline DiscoveryPipeline, log *logger.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		pipeline: pipeline,
		logger:   log,
	}
}

// Discover handles POST /api/chat. A missing message is the only 400; a
// text-generation failure is the only 500. Search-provider trouble never
// surfaces here — the pipeline degrades to the fallback corpus internally.
func (handler *DiscoveryHandler) Discover(c *gin.Context) {
	var request models.DiscoveryRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Message is required"})
		return
	}

	if request.SearchOffset < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "searchOffset must be non-negative"})
		return
	}

	response, err := handler.pipeline.Discover(c.Request.Context(), &request)
	if err != nil {
		handler.logger.WithError(err).Error("Discovery request failed",
			"message", request.Message,
			"find_more", request.FindMore)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to process your request",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response)
}
