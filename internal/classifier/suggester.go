package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/sentiment-bot/internal/models"
)

// ErrNoSuggestion is returned when the model reply carries no usable label.
var ErrNoSuggestion = errors.New("no label suggestion")

type suggestion struct {
	Label string `json:"label"`
}

// GPTSuggester asks a chat model for a label hint shown next to the labeling
// prompt. The human still picks the label that gets stored.
type GPTSuggester struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewGPTSuggester talks to the OpenAI API, or to baseURL when it is set.
func NewGPTSuggester(apiKey, baseURL, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTSuggester {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &GPTSuggester{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func (s *GPTSuggester) Suggest(ctx context.Context, text string) (models.Label, error) {
	prompt := fmt.Sprintf(`Classify the sentiment of the following Vietnamese text as exactly one of: positive, negative, neutral.

Return the response as a JSON object with this structure:
{"label": "positive|negative|neutral"}

Text: %s`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   s.maxTokens,
			Temperature: float32(s.temperature),
		},
	)
	if err != nil {
		s.logger.Warn("Failed to get label suggestion", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrNoSuggestion, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty reply", ErrNoSuggestion)
	}

	response := strings.TrimSpace(resp.Choices[0].Message.Content)
	var parsed suggestion
	if err := json.Unmarshal([]byte(response), &parsed); err != nil {
		// Some models answer with the bare word.
		parsed.Label = strings.Trim(response, "\"' .")
	}
	label, err := models.ParseLabel(parsed.Label)
	if err != nil {
		s.logger.Warn("Unusable label suggestion", zap.String("response", response))
		return "", fmt.Errorf("%w: %v", ErrNoSuggestion, err)
	}
	return label, nil
}
