package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"trendpulse/internal/domain/article"
)

func TestClassifyWithRules(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		topic string
	}{
		{
			"politics",
			"The president called an early election as parliament debated the new legislation",
			"Politics & Elections",
		},
		{
			"technology",
			"The startup unveiled new artificial intelligence software for cybersecurity",
			"Technology & Innovation",
		},
		{
			"health",
			"Hospital doctors report the vaccine reduced disease severity in patients",
			"Health & Medicine",
		},
		{
			"sports",
			"The team won the championship match after the player scored twice",
			"Sports & Entertainment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyWithRules(tt.text)

			assert.Equal(t, tt.topic, result.Topic)
			assert.Equal(t, article.MethodRuleBased, result.Method)
			assert.Greater(t, result.Confidence, 0.1)
		})
	}
}

func TestClassifyWithRulesNoMatch(t *testing.T) {
	result := ClassifyWithRules("lorem ipsum dolor sit amet")

	assert.Equal(t, fallbackTopic, result.Topic)
	assert.Equal(t, 0.1, result.Confidence)
}

func TestClassifyWithRulesEmpty(t *testing.T) {
	result := ClassifyWithRules("")

	assert.Equal(t, fallbackTopic, result.Topic)
	assert.Equal(t, article.MethodRuleBased, result.Method)
}

func TestClassifyWithRulesConfidenceCapped(t *testing.T) {
	result := ClassifyWithRules("election vote election vote election")

	assert.LessOrEqual(t, result.Confidence, 1.0)
}

type stubModel struct {
	result article.Classification
	err    error
}

func (s *stubModel) Classify(context.Context, string) (article.Classification, error) {
	return s.result, s.err
}

func TestClassifierRulesOnly(t *testing.T) {
	logger := zerolog.Nop()
	c := New(nil, 0.6, &logger)

	result := c.Classify(context.Background(), "Parliament votes on election reform", "")

	assert.Equal(t, "Politics & Elections", result.Topic)
	assert.Equal(t, article.MethodRuleBased, result.Method)
}

func TestClassifierConfidentModelWins(t *testing.T) {
	logger := zerolog.Nop()
	model := &stubModel{result: article.Classification{
		Topic:      "Science & Research",
		Confidence: 0.9,
		Method:     article.MethodNeural,
	}}
	c := New(model, 0.6, &logger)

	result := c.Classify(context.Background(), "Parliament votes on election reform", "")

	assert.Equal(t, "Science & Research", result.Topic)
	assert.Equal(t, article.MethodNeural, result.Method)
}

func TestClassifierBlendsAgreement(t *testing.T) {
	logger := zerolog.Nop()
	model := &stubModel{result: article.Classification{
		Topic:      "Politics & Elections",
		Confidence: 0.4,
		Method:     article.MethodNeural,
	}}
	c := New(model, 0.6, &logger)

	result := c.Classify(context.Background(), "Parliament votes on election reform", "")

	assert.Equal(t, "Politics & Elections", result.Topic)
	assert.Equal(t, article.MethodBlended, result.Method)
}

func TestClassifierFallsBackOnModelError(t *testing.T) {
	logger := zerolog.Nop()
	model := &stubModel{err: errors.New("rate limited")}
	c := New(model, 0.6, &logger)

	result := c.Classify(context.Background(), "Parliament votes on election reform", "")

	assert.Equal(t, "Politics & Elections", result.Topic)
	assert.Equal(t, article.MethodRuleBased, result.Method)
}
