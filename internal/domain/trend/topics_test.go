package trend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTopic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "exact", input: "Politics & Elections", want: "Politics & Elections"},
		{name: "exact case-insensitive", input: "politics & elections", want: "Politics & Elections"},
		{name: "partial prefix", input: "Politics", want: "Politics & Elections"},
		{name: "partial suffix", input: "elections", want: "Politics & Elections"},
		{name: "partial tech", input: "tech", want: "Technology & Innovation"},
		{name: "partial climate", input: "Climate", want: "Climate & Environment"},
		{name: "superset of label", input: "the War & International desk", want: "War & International"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTopic(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveTopicUnknown(t *testing.T) {
	_, err := ResolveTopic("Gardening")
	require.Error(t, err)

	var unknownErr *UnknownTopicError

	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "Gardening", unknownErr.Topic)
}

func TestResolveTopicSuggestion(t *testing.T) {
	// Word overlap should surface the closest label even when containment
	// fails in both directions.
	_, err := ResolveTopic("elections politics")
	require.Error(t, err)

	var unknownErr *UnknownTopicError

	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "Politics & Elections", unknownErr.Suggestion)
}

func TestResolveTopicEmpty(t *testing.T) {
	_, err := ResolveTopic("   ")
	require.Error(t, err)
}
