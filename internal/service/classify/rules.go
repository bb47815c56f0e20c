package classify

import (
	"regexp"
	"sort"
	"strings"

	"trendpulse/internal/domain/article"
)

// fallbackTopic is assigned when no keyword matches at all.
const fallbackTopic = "Society & Culture"

var topicKeywords = map[string][]string{
	"Politics & Elections": {
		"election", "vote", "government", "president", "minister", "congress",
		"senate", "parliament", "political", "campaign", "policy", "legislation",
		"democrat", "republican", "party", "ballot", "candidate",
	},
	"Technology & Innovation": {
		"technology", "tech", "digital", "ai", "artificial intelligence",
		"machine learning", "robot", "computer", "software", "app", "internet",
		"cybersecurity", "blockchain", "cryptocurrency", "innovation", "startup",
	},
	"Climate & Environment": {
		"climate", "environment", "global warming", "carbon", "emission",
		"renewable", "solar", "wind", "pollution", "sustainability", "green",
		"ecosystem", "conservation", "deforestation", "biodiversity",
	},
	"Health & Medicine": {
		"health", "medical", "hospital", "doctor", "patient", "disease",
		"treatment", "medicine", "pharmaceutical", "covid", "vaccine", "virus",
		"epidemic", "pandemic", "healthcare", "surgery", "therapy",
	},
	"Business & Economy": {
		"business", "economy", "economic", "market", "stock", "finance",
		"company", "corporation", "trade", "investment", "profit", "revenue",
		"gdp", "inflation", "recession", "banking", "financial",
	},
	"Sports & Entertainment": {
		"sport", "sports", "game", "team", "player", "match", "championship",
		"olympic", "football", "basketball", "soccer", "tennis", "entertainment",
		"movie", "film", "music", "celebrity", "actor", "singer",
	},
	"War & International": {
		"war", "military", "conflict", "defense", "army", "soldier", "battle",
		"weapon", "missile", "peace", "treaty", "international", "foreign",
		"diplomat", "embassy", "alliance", "nato", "un", "united nations",
	},
	"Society & Culture": {
		"society", "social", "culture", "cultural", "community", "education",
		"school", "university", "religion", "religious", "art", "history",
		"tradition", "lifestyle", "family", "gender", "race", "equality",
	},
	"Science & Research": {
		"science", "research", "study", "scientist", "discovery", "experiment",
		"laboratory", "academic", "university", "physics", "chemistry", "biology",
		"space", "nasa", "astronomy", "genetics", "dna",
	},
	"Crime & Justice": {
		"crime", "criminal", "police", "court", "judge", "lawyer", "attorney",
		"trial", "sentence", "prison", "arrest", "investigation", "murder",
		"theft", "fraud", "justice", "law", "legal",
	},
}

var keywordPatterns = compileKeywordPatterns()

func compileKeywordPatterns() map[string][]*regexp.Regexp {
	patterns := make(map[string][]*regexp.Regexp, len(topicKeywords))

	for topic, keywords := range topicKeywords {
		compiled := make([]*regexp.Regexp, 0, len(keywords))
		for _, kw := range keywords {
			compiled = append(compiled, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
		}

		patterns[topic] = compiled
	}

	return patterns
}

// ClassifyWithRules scores the text against each topic's keyword list and
// returns the best match. A text with no keyword hits gets the fallback
// topic at minimal confidence.
func ClassifyWithRules(text string) article.Classification {
	result := article.Classification{
		Topic:      fallbackTopic,
		Confidence: 0.1,
		Method:     article.MethodRuleBased,
	}

	if text == "" {
		return result
	}

	lower := strings.ToLower(text)
	words := len(strings.Fields(lower))

	if words == 0 {
		return result
	}

	type scored struct {
		topic string
		score float64
	}

	scores := make([]scored, 0, len(keywordPatterns))

	for topic, patterns := range keywordPatterns {
		hits := 0
		for _, p := range patterns {
			hits += len(p.FindAllStringIndex(lower, -1))
		}

		scores = append(scores, scored{topic, float64(hits) / float64(words)})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}

		return scores[i].topic < scores[j].topic
	})

	if scores[0].score == 0 {
		return result
	}

	confidence := scores[0].score * 10
	if confidence > 1 {
		confidence = 1
	}

	return article.Classification{
		Topic:      scores[0].topic,
		Confidence: confidence,
		Method:     article.MethodRuleBased,
	}
}
