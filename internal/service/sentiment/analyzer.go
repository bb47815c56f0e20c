// Package sentiment scores article text on a [-1, 1] scale.
package sentiment

import (
	"math"
	"regexp"
	"strings"

	"trendpulse/internal/domain/article"
)

// Label buckets a score for presentation.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
	LabelNeutral  Label = "neutral"

	// labelThreshold separates neutral from positive/negative.
	labelThreshold = 0.1

	// minTextLength is the shortest text worth scoring.
	minTextLength = 10
)

var positiveWords = []string{
	"good", "great", "excellent", "amazing", "wonderful", "fantastic", "outstanding",
	"success", "achievement", "victory", "win", "progress", "improvement", "growth",
	"beneficial", "advantage", "positive", "optimistic", "hopeful", "promising",
	"breakthrough", "innovation", "solution", "opportunity", "boost", "rise",
	"celebrate", "joy", "happy", "pleased", "satisfied", "thrilled", "excited",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "horrible", "disaster", "crisis", "problem",
	"failure", "defeat", "loss", "decline", "worsen", "deteriorate", "collapse",
	"harmful", "dangerous", "threat", "risk", "concern", "worry", "fear",
	"violence", "war", "conflict", "attack", "damage", "destruction", "death",
	"sad", "angry", "frustrated", "disappointed", "concerned", "alarmed",
}

var negationWords = []string{
	"not", "no", "never", "nothing", "nowhere", "neither", "nobody", "none",
}

var (
	positivePatterns = compileWords(positiveWords)
	negativePatterns = compileWords(negativeWords)
	negationPatterns = compileWords(negationWords)
)

func compileWords(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		patterns = append(patterns, regexp.MustCompile(`\b`+w+`\b`))
	}

	return patterns
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	total := 0
	for _, p := range patterns {
		total += len(p.FindAllStringIndex(text, -1))
	}

	return total
}

// Analyze scores the text by lexicon lookup. Texts shorter than ten
// characters and texts without any sentiment words stay neutral at minimal
// confidence.
func Analyze(text string) article.Sentiment {
	if len(strings.TrimSpace(text)) < minTextLength {
		return article.Sentiment{Score: 0, Confidence: 0}
	}

	lower := strings.ToLower(text)
	totalWords := len(strings.Fields(lower))

	positive := countMatches(positivePatterns, lower)
	negative := countMatches(negativePatterns, lower)
	negations := countMatches(negationPatterns, lower)

	// A heavily negated text most likely means the opposite of its lexicon
	// hits.
	if negations > 2 {
		positive, negative = negative, positive
	}

	sentimentWords := positive + negative
	if sentimentWords == 0 {
		return article.Sentiment{Score: 0, Confidence: 0.1}
	}

	denominator := float64(totalWords)
	if denominator < 1 {
		denominator = 1
	}

	positiveRatio := float64(positive) / denominator
	negativeRatio := float64(negative) / denominator

	score := math.Tanh((positiveRatio - negativeRatio) * 10)

	confidenceBase := float64(totalWords) * 0.1
	if confidenceBase < 1 {
		confidenceBase = 1
	}

	confidence := float64(sentimentWords) / confidenceBase
	if confidence > 1 {
		confidence = 1
	}

	return article.Sentiment{Score: score, Confidence: confidence}
}

// LabelFor buckets a score into positive, negative or neutral.
func LabelFor(score float64) Label {
	switch {
	case score > labelThreshold:
		return LabelPositive
	case score < -labelThreshold:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
