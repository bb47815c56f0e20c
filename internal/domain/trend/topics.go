package trend

import (
	"strings"
)

// Topics is the fixed topic label set. Every classified article carries
// exactly one of these labels.
var Topics = []string{
	"Politics & Elections",
	"Technology & Innovation",
	"Climate & Environment",
	"Health & Medicine",
	"Business & Economy",
	"Sports & Entertainment",
	"War & International",
	"Society & Culture",
	"Science & Research",
	"Crime & Justice",
}

// ResolveTopic maps a user-supplied topic string onto the fixed label set.
// Matching is case-insensitive and accepts partial matches in either
// direction, so "Politics" resolves to "Politics & Elections". On failure it
// returns an UnknownTopicError carrying the closest label as a suggestion.
func ResolveTopic(name string) (string, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return "", &UnknownTopicError{Topic: name}
	}

	for _, label := range Topics {
		if strings.EqualFold(label, needle) {
			return label, nil
		}
	}

	for _, label := range Topics {
		lower := strings.ToLower(label)
		if strings.Contains(lower, needle) || strings.Contains(needle, lower) {
			return label, nil
		}
	}

	return "", &UnknownTopicError{Topic: name, Suggestion: closestTopic(needle)}
}

// closestTopic picks the label sharing the most words with the input,
// breaking ties in declaration order.
func closestTopic(needle string) string {
	words := strings.FieldsFunc(needle, isSeparator)

	best := ""
	bestOverlap := 0

	for _, label := range Topics {
		overlap := 0
		labelWords := strings.FieldsFunc(strings.ToLower(label), isSeparator)

		for _, w := range words {
			for _, lw := range labelWords {
				if w == lw || strings.HasPrefix(lw, w) || strings.HasPrefix(w, lw) {
					overlap++
				}
			}
		}

		if overlap > bestOverlap {
			best = label
			bestOverlap = overlap
		}
	}

	return best
}

func isSeparator(r rune) bool {
	return r == ' ' || r == '&' || r == '-' || r == '_' || r == ','
}
