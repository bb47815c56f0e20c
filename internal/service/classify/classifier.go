// Package classify assigns each article one topic from the fixed catalog.
package classify

import (
	"context"

	"github.com/rs/zerolog"

	"trendpulse/internal/domain/article"
)

// ModelClassifier is the optional neural backend.
type ModelClassifier interface {
	Classify(ctx context.Context, text string) (article.Classification, error)
}

// Classifier combines the neural backend with the keyword scorer. The model
// answer stands on its own when it clears the confidence threshold; a
// low-confidence model answer that the keyword scorer agrees with is kept as
// blended; everything else is decided by rules.
type Classifier struct {
	model     ModelClassifier
	threshold float64
	logger    *zerolog.Logger
}

// New creates a classifier. A nil model means rules-only operation.
func New(model ModelClassifier, confidenceThreshold float64, logger *zerolog.Logger) *Classifier {
	if confidenceThreshold <= 0 || confidenceThreshold > 1 {
		confidenceThreshold = 0.6
	}

	return &Classifier{
		model:     model,
		threshold: confidenceThreshold,
		logger:    logger,
	}
}

// Classify decides the article's topic from its title and content.
func (c *Classifier) Classify(ctx context.Context, title, content string) article.Classification {
	text := title
	if content != "" {
		text = title + " " + content
	}

	ruled := ClassifyWithRules(text)

	if c.model == nil {
		return ruled
	}

	neural, err := c.model.Classify(ctx, text)
	if err != nil {
		c.logger.Warn().Err(err).Msg("neural classification failed, using rules")

		return ruled
	}

	if neural.Confidence >= c.threshold {
		return neural
	}

	if neural.Topic == ruled.Topic {
		blended := neural
		blended.Method = article.MethodBlended

		if ruled.Confidence > blended.Confidence {
			blended.Confidence = ruled.Confidence
		}

		return blended
	}

	if neural.Confidence > ruled.Confidence {
		return neural
	}

	return ruled
}
