package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"mydailymath-pipeline/internal/config"
	"mydailymath-pipeline/internal/models"
	"mydailymath-pipeline/internal/pkg/logger"
)

// Prompt budgeting for the analysis path: only the top results go into the
// context, each with a bounded body.
const (
	analysisContextResults  = 4
	analysisContextBodySize = 400
	analysisMaxOutputTokens = 1024
)

// GeminiService is the text-generation gateway. Unlike the search gateway
// it has no fallback: a generation failure is the terminal failure mode of
// the request.
type GeminiService struct {
	client *genai.Client
	config config.GeminiConfig
	logger *logger.Logger
}

type GenerationRequest struct {
	Prompt      string
	MaxTokens   int32
	Temperature *float32
}

type GenerationResponse struct {
	Content        string
	FinishReason   string
	ProcessingTime time.Duration
}

func NewGeminiService(config config.GeminiConfig, log *logger.Logger) (*GeminiService, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key required")
	}

	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	service := &GeminiService{
		client: client,
		config: config,
		logger: log,
	}

	log.Info("AI Service Initialized Successfully - Gemini API",
		"model", config.Model,
		"max_tokens", config.MaxTokens,
		"temperature", config.Temperature)

	return service, nil
}

func (service *GeminiService) GenerateContent(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	startTime := time.Now()

	var response *GenerationResponse
	var err error

	for attempt := 1; attempt <= service.config.MaxRetries; attempt++ {
		response, err = service.makeGenerationRequest(ctx, request)
		if err == nil {
			break
		}

		if attempt < service.config.MaxRetries {
			service.logger.WithFields(logger.Fields{
				"attempt":     attempt,
				"max_retries": service.config.MaxRetries,
				"error":       err,
			}).Warn("Generate Content Failed, Retrying")

			select {
			case <-time.After(service.config.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return nil, models.NewTimeoutError("GEMINI_TIMEOUT", "Content Generation Timeout").WithCause(ctx.Err())
			}
		}
	}

	if err != nil {
		service.logger.LogService("gemini", "generate_content", time.Since(startTime), map[string]interface{}{
			"prompt_length": len(request.Prompt),
			"attempts":      service.config.MaxRetries,
		}, err)
		return nil, models.WrapExternalError("GEMINI", err)
	}

	duration := time.Since(startTime)
	response.ProcessingTime = duration

	service.logger.LogService("gemini", "generate_content", duration, map[string]interface{}{
		"prompt_length":   len(request.Prompt),
		"response_length": len(response.Content),
		"finish_reason":   response.FinishReason,
	}, nil)

	return response, nil
}

func (service *GeminiService) makeGenerationRequest(ctx context.Context, request *GenerationRequest) (*GenerationResponse, error) {
	genCtx, cancel := context.WithTimeout(ctx, service.config.Timeout)
	defer cancel()

	generationConfig := &genai.GenerateContentConfig{}

	if request.Temperature != nil {
		generationConfig.Temperature = request.Temperature
	} else {
		temperature := float32(service.config.Temperature)
		generationConfig.Temperature = &temperature
	}

	if request.MaxTokens != 0 {
		generationConfig.MaxOutputTokens = request.MaxTokens
	} else {
		generationConfig.MaxOutputTokens = int32(service.config.MaxTokens)
	}

	result, err := service.client.Models.GenerateContent(genCtx, service.config.Model, genai.Text(request.Prompt), generationConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no response candidates generated")
	}

	candidate := result.Candidates[0]

	text := ""
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			text += part.Text
		}
	}

	return &GenerationResponse{
		Content:      text,
		FinishReason: string(candidate.FinishReason),
	}, nil
}

// AnalyzeSearchResults synthesizes the filtered batch into an educational
// analysis of the user's mathematics question.
func (service *GeminiService) AnalyzeSearchResults(ctx context.Context, userQuery string, results []models.SearchResult) (string, error) {
	prompt := service.buildAnalysisPrompt(userQuery, results)

	temperature := float32(0.7)
	response, err := service.GenerateContent(ctx, &GenerationRequest{
		Prompt:      prompt,
		MaxTokens:   analysisMaxOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("search result analysis failed: %w", err)
	}

	return response.Content, nil
}

// GenerateTopicInsight handles the designed empty-result path: no new
// articles were found, so the user gets general educational insight about
// the topic instead of an article synthesis.
func (service *GeminiService) GenerateTopicInsight(ctx context.Context, topic string) (string, error) {
	prompt := fmt.Sprintf(`The user asked about "%s" in mathematics. No new articles were found. Provide educational insights about this mathematical topic, why it's important, and suggestions for learning more. Keep it under 200 words and focus on mathematics education.`, topic)

	temperature := float32(0.7)
	response, err := service.GenerateContent(ctx, &GenerationRequest{
		Prompt:      prompt,
		MaxTokens:   analysisMaxOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("topic insight generation failed: %w", err)
	}

	return response.Content, nil
}

// GenerateAssistantReply powers the standalone conversational assistant,
// folding the last few history turns into the prompt.
func (service *GeminiService) GenerateAssistantReply(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	prompt := service.buildAssistantPrompt(message, history)

	temperature := float32(0.7)
	response, err := service.GenerateContent(ctx, &GenerationRequest{
		Prompt:      prompt,
		MaxTokens:   analysisMaxOutputTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("assistant reply generation failed: %w", err)
	}

	return response.Content, nil
}

func (service *GeminiService) buildAnalysisPrompt(userQuery string, results []models.SearchResult) string {
	return fmt.Sprintf(`You are an expert mathematics educator and researcher. Based on the following recent search results about "%s" in mathematics, provide an educational and insightful analysis:

RECENT MATHEMATICS SEARCH RESULTS:
%s

Please provide:
1. A clear explanation of the mathematical concepts or developments
2. Why this is significant for mathematics education or research
3. How this connects to broader mathematical understanding
4. Educational insights that would help someone learn about this topic
5. Any practical applications or real-world connections

Guidelines:
- Keep your response educational and accessible
- Focus on helping users understand and learn mathematics
- Explain complex concepts in clear terms
- Highlight the beauty and importance of mathematics
- Limit response to 250-300 words
- Use encouraging, educational language

User's mathematics question: "%s"`, userQuery, buildSearchContext(results), userQuery)
}

// buildSearchContext renders the top filtered results with bounded bodies
// so the prompt stays within budget regardless of provider verbosity.
func buildSearchContext(results []models.SearchResult) string {
	var builder strings.Builder

	count := len(results)
	if count > analysisContextResults {
		count = analysisContextResults
	}

	for i := 0; i < count; i++ {
		result := results[i]
		builder.WriteString(fmt.Sprintf("[%d] %s\n%s...\nSource: %s\n\n",
			i+1, result.Title, truncateRunes(result.Content, analysisContextBodySize), result.URL))
	}

	return builder.String()
}

func (service *GeminiService) buildAssistantPrompt(message string, history []models.ChatMessage) string {
	conversationContext := ""
	start := len(history) - 6
	if start < 0 {
		start = 0
	}

	for _, turn := range history[start:] {
		role := "Assistant"
		if turn.Role == "user" {
			role = "User"
		}
		conversationContext += fmt.Sprintf("%s: %s\n", role, turn.Content)
	}

	historySection := ""
	if conversationContext != "" {
		historySection = fmt.Sprintf("Previous conversation:\n%s\n", conversationContext)
	}

	return fmt.Sprintf(`You are a helpful AI assistant for MyDailyMath platform. You can help users with:
- Mathematics questions and explanations
- General questions about any topic
- Learning guidance and study tips
- Problem-solving assistance
- Educational support

Guidelines:
- Be friendly, helpful, and encouraging
- Explain complex concepts in simple terms
- Provide step-by-step solutions when appropriate
- If asked about mathematics, be thorough but accessible
- For non-math questions, be informative and helpful
- Keep responses concise but complete (under 300 words)
- Use a warm, educational tone

%sUser's current question: "%s"`, historySection, message)
}

func (service *GeminiService) HealthCheck(ctx context.Context) error {
	testCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var temperature float32 = 0

	response, err := service.GenerateContent(testCtx, &GenerationRequest{
		Prompt:      "Respond with 'OK' if you can process this request",
		Temperature: &temperature,
		MaxTokens:   10,
	})
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if response.Content == "" {
		return fmt.Errorf("empty response received")
	}

	return nil
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
