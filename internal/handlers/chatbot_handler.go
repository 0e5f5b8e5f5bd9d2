package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

// AssistantGenerator produces conversational replies for the standalone
// assistant.
type AssistantGenerator interface {
	GenerateAssistantReply(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

type ChatbotHandler struct {
	generator AssistantGenerator
	logger    *logger.Logger
}

func NewChatbotHandler(generator AssistantGenerator, log *logger.Logger) *ChatbotHandler {
	return &ChatbotHandler{
		generator: generator,
		logger:    log,
	}
}

// Chat handles POST /api/chatbot.
func (handler *ChatbotHandler) Chat(c *gin.Context) {
	var request models.ChatbotRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Message is required"})
		return
	}

	reply, err := handler.generator.GenerateAssistantReply(c.Request.Context(), request.Message, request.History)
	if err != nil {
		handler.logger.WithError(err).Error("Chatbot request failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to process your message",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.ChatbotResponse{
		Response:  reply,
		Timestamp: time.Now(),
	})
}
