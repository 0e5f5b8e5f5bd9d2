package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mydailymath-pipeline/internal/pkg/logger"
)

// NewRouter wires the HTTP surface: the discovery pipeline, the standalone
// assistant, and health.
func NewRouter(discovery *DiscoveryHandler, chatbot *ChatbotHandler, health *HealthHandler, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))

	api := router.Group("/api")
	api.POST("/chat", discovery.Discover)
	api.POST("/chatbot", chatbot.Chat)

	router.GET("/health", health.Health)

	return router
}

func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		requestID := uuid.New().String()
		c.Set("request_id", requestID)

		c.Next()

		log.LogRequest(requestID, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(startTime))
	}
}
