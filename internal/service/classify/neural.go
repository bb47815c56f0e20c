package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"trendpulse/internal/domain/article"
	"trendpulse/internal/domain/trend"
)

const maxClassifyChars = 4000

// NeuralClassifier asks an external language model to pick a topic from the
// fixed catalog. It is optional: a nil classifier means rules-only operation.
type NeuralClassifier struct {
	client *openai.Client
	model  string
}

// NewNeuralClassifier builds a model-backed classifier. It returns nil when
// no API key is configured.
func NewNeuralClassifier(apiKey, baseURL, model string) *NeuralClassifier {
	if apiKey == "" {
		return nil
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &NeuralClassifier{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

type neuralAnswer struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// Classify asks the model for a topic and confidence. The answer's topic is
// validated against the catalog; anything unrecognized is an error so the
// caller falls back to rules.
func (c *NeuralClassifier) Classify(ctx context.Context, text string) (article.Classification, error) {
	if len(text) > maxClassifyChars {
		text = text[:maxClassifyChars]
	}

	prompt := fmt.Sprintf(
		"Classify the news text into exactly one of these topics:\n%s\n\n"+
			"Respond with JSON only: {\"topic\": \"<topic>\", \"confidence\": <0..1>}\n\nText:\n%s",
		strings.Join(trend.Topics, "\n"), text,
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return article.Classification{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return article.Classification{}, fmt.Errorf("empty completion response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var answer neuralAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &answer); err != nil {
		return article.Classification{}, fmt.Errorf("parse model answer: %w", err)
	}

	resolved, err := trend.ResolveTopic(answer.Topic)
	if err != nil {
		return article.Classification{}, fmt.Errorf("model returned unknown topic %q", answer.Topic)
	}

	confidence := answer.Confidence
	if confidence < 0 {
		confidence = 0
	}

	if confidence > 1 {
		confidence = 1
	}

	return article.Classification{
		Topic:      resolved,
		Confidence: confidence,
		Method:     article.MethodNeural,
	}, nil
}
