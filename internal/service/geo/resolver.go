// Package geo resolves article text to a single country.
package geo

import (
	"regexp"
	"sort"
	"strings"

	"trendpulse/internal/domain/article"
)

var countryAliases = map[string]string{
	"usa":          "United States",
	"us":           "United States",
	"america":      "United States",
	"uk":           "United Kingdom",
	"britain":      "United Kingdom",
	"england":      "United Kingdom",
	"uae":          "United Arab Emirates",
	"russia":       "Russia",
	"china":        "China",
	"india":        "India",
	"japan":        "Japan",
	"germany":      "Germany",
	"france":       "France",
	"italy":        "Italy",
	"spain":        "Spain",
	"canada":       "Canada",
	"australia":    "Australia",
	"brazil":       "Brazil",
	"mexico":       "Mexico",
	"south korea":  "South Korea",
	"north korea":  "North Korea",
	"saudi arabia": "Saudi Arabia",
	"south africa": "South Africa",
}

var cityToCountry = map[string]string{
	"new york":      "United States",
	"los angeles":   "United States",
	"chicago":       "United States",
	"washington":    "United States",
	"boston":        "United States",
	"london":        "United Kingdom",
	"manchester":    "United Kingdom",
	"liverpool":     "United Kingdom",
	"paris":         "France",
	"marseille":     "France",
	"berlin":        "Germany",
	"munich":        "Germany",
	"rome":          "Italy",
	"milan":         "Italy",
	"madrid":        "Spain",
	"barcelona":     "Spain",
	"tokyo":         "Japan",
	"osaka":         "Japan",
	"beijing":       "China",
	"shanghai":      "China",
	"mumbai":        "India",
	"delhi":         "India",
	"sydney":        "Australia",
	"melbourne":     "Australia",
	"toronto":       "Canada",
	"vancouver":     "Canada",
	"moscow":        "Russia",
	"st petersburg": "Russia",
}

type mentionPattern struct {
	name    string
	country string
	isCity  bool
	re      *regexp.Regexp
}

var mentionPatterns = compileMentionPatterns()

func compileMentionPatterns() []mentionPattern {
	patterns := make([]mentionPattern, 0, len(countryAliases)+len(cityToCountry))

	for alias, country := range countryAliases {
		patterns = append(patterns, mentionPattern{
			name:    alias,
			country: country,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\b`),
		})
	}

	for city, country := range cityToCountry {
		patterns = append(patterns, mentionPattern{
			name:    city,
			country: country,
			isCity:  true,
			re:      regexp.MustCompile(`\b` + regexp.QuoteMeta(city) + `\b`),
		})
	}

	// Longer names first, so "south korea" beats a later "korea"-like alias
	// and output stays deterministic.
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i].name) != len(patterns[j].name) {
			return len(patterns[i].name) > len(patterns[j].name)
		}

		return patterns[i].name < patterns[j].name
	})

	return patterns
}

// Resolve finds country and city mentions in the text and picks the most
// mentioned country. No mention at all yields an empty resolution, never an
// error.
func Resolve(text string) article.GeoResolution {
	if text == "" {
		return article.GeoResolution{}
	}

	lower := strings.ToLower(text)

	var (
		mentions      []string
		seen          = map[string]struct{}{}
		countryHits   = map[string]int{}
		totalMentions int
		countryWords  int
	)

	for _, p := range mentionPatterns {
		hits := len(p.re.FindAllStringIndex(lower, -1))
		if hits == 0 {
			continue
		}

		if _, ok := seen[p.name]; !ok {
			seen[p.name] = struct{}{}
			mentions = append(mentions, p.name)
		}

		countryHits[p.country] += hits
		totalMentions += hits

		if !p.isCity {
			countryWords += hits
		}
	}

	if len(mentions) == 0 {
		return article.GeoResolution{}
	}

	countries := make([]string, 0, len(countryHits))
	for c := range countryHits {
		countries = append(countries, c)
	}

	// Ties break alphabetically so repeated runs agree.
	sort.Slice(countries, func(i, j int) bool {
		if countryHits[countries[i]] != countryHits[countries[j]] {
			return countryHits[countries[i]] > countryHits[countries[j]]
		}

		return countries[i] < countries[j]
	})

	return article.GeoResolution{
		Country:    countries[0],
		Mentions:   mentions,
		Confidence: confidence(totalMentions, countryWords, len(mentions)),
	}
}

// confidence grows with mention volume, direct country references and
// mention diversity, capped at 1.
func confidence(totalMentions, countryMentions, distinct int) float64 {
	mentionScore := float64(totalMentions) * 0.2
	if mentionScore > 0.8 {
		mentionScore = 0.8
	}

	countryBonus := float64(countryMentions) * 0.1
	if countryBonus > 0.2 {
		countryBonus = 0.2
	}

	diversityBonus := float64(distinct) * 0.05
	if diversityBonus > 0.1 {
		diversityBonus = 0.1
	}

	score := mentionScore + countryBonus + diversityBonus
	if score > 1 {
		score = 1
	}

	return score
}

// CountryCode returns the ISO 3166-1 alpha-2 code for a known country name.
func CountryCode(country string) (string, bool) {
	code, ok := countryCodes[strings.ToLower(country)]

	return code, ok
}

var countryCodes = map[string]string{
	"united states":        "US",
	"united kingdom":       "GB",
	"germany":              "DE",
	"france":               "FR",
	"italy":                "IT",
	"spain":                "ES",
	"japan":                "JP",
	"china":                "CN",
	"india":                "IN",
	"russia":               "RU",
	"canada":               "CA",
	"australia":            "AU",
	"brazil":               "BR",
	"mexico":               "MX",
	"south korea":          "KR",
	"north korea":          "KP",
	"saudi arabia":         "SA",
	"south africa":         "ZA",
	"united arab emirates": "AE",
}
