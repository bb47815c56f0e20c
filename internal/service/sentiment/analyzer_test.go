package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzePositive(t *testing.T) {
	result := Analyze("The breakthrough is a great success and a wonderful achievement for the team")

	assert.Greater(t, result.Score, 0.1)
	assert.Greater(t, result.Confidence, 0.1)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestAnalyzeNegative(t *testing.T) {
	result := Analyze("The crisis worsened into a disaster with terrible loss and destruction")

	assert.Less(t, result.Score, -0.1)
	assert.GreaterOrEqual(t, result.Score, -1.0)
}

func TestAnalyzeNeutral(t *testing.T) {
	result := Analyze("Officials announce the quarterly report according to new data")

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.1, result.Confidence, "no sentiment words means minimal confidence")
}

func TestAnalyzeShortText(t *testing.T) {
	result := Analyze("great")

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestAnalyzeNegationFlips(t *testing.T) {
	positive := Analyze("The outcome was a great success and a wonderful win for everyone involved")
	negated := Analyze("No it was not a great success, never a wonderful win, nothing good for anyone involved")

	assert.Greater(t, positive.Score, 0.0)
	assert.Less(t, negated.Score, 0.0, "heavy negation flips the polarity")
}

func TestAnalyzeScoreBounded(t *testing.T) {
	result := Analyze("win win win win win win win win win win")

	assert.LessOrEqual(t, result.Score, 1.0)
	assert.GreaterOrEqual(t, result.Score, -1.0)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, LabelPositive, LabelFor(0.5))
	assert.Equal(t, LabelNegative, LabelFor(-0.5))
	assert.Equal(t, LabelNeutral, LabelFor(0.05))
	assert.Equal(t, LabelNeutral, LabelFor(0.0))
}
