// Package preprocess normalizes raw article text before enrichment.
package preprocess

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
)

const (
	summaryLength    = 200
	minKeywordLength = 3
	maxKeywords      = 10

	// titleSimilarity is the word-overlap ratio above which two titles are
	// considered the same story.
	titleSimilarity = 0.8
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`(?:https?://|www\.)\S+`)
	wordRe       = regexp.MustCompile(`[a-zA-Z]+`)

	stopwords = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
		"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
		"with": {}, "by": {}, "is": {}, "are": {}, "was": {}, "were": {},
		"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
		"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
		"should": {}, "may": {}, "might": {}, "must": {}, "can": {},
		"this": {}, "that": {}, "these": {}, "those": {},
	}
)

// CleanText strips HTML, normalizes unicode and whitespace and removes URLs.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = stripHTML(text)
	text = normalizeUnicode(text)
	text = urlRe.ReplaceAllString(text, "")

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func stripHTML(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return html.UnescapeString(text)
	}

	return html.UnescapeString(doc.Text())
}

// normalizeUnicode strips accents and drops the remaining non-ASCII runes.
func normalizeUnicode(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		switch {
		case r < 128:
			b.WriteRune(r)
		default:
			if ascii, ok := asciiFold[r]; ok {
				b.WriteString(ascii)
			}
		}
	}

	return b.String()
}

// asciiFold covers the accented latin characters that show up in English
// news text. Anything else non-ASCII is dropped.
var asciiFold = map[rune]string{
	'á': "a", 'à': "a", 'â': "a", 'ä': "a", 'ã': "a", 'å': "a",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'ó': "o", 'ò': "o", 'ô': "o", 'ö': "o", 'õ': "o",
	'ú': "u", 'ù': "u", 'û': "u", 'ü': "u",
	'ñ': "n", 'ç': "c", 'ß': "ss",
	'Á': "A", 'À': "A", 'Â': "A", 'Ä': "A", 'Ã': "A", 'Å': "A",
	'É': "E", 'È': "E", 'Ê': "E", 'Ë': "E",
	'Í': "I", 'Ì': "I", 'Î': "I", 'Ï': "I",
	'Ó': "O", 'Ò': "O", 'Ô': "O", 'Ö': "O", 'Õ': "O",
	'Ú': "U", 'Ù': "U", 'Û': "U", 'Ü': "U",
	'Ñ': "N", 'Ç': "C",
	'‘': "'", '’': "'", '“': `"`, '”': `"`,
	'–': "-", '—': "-", '…': "...",
}

// Summarize truncates cleaned content to the summary length, falling back to
// the title when there is no content.
func Summarize(content, title string) string {
	if content == "" {
		return title
	}

	if len(content) <= summaryLength {
		return content
	}

	return content[:summaryLength] + "..."
}

// ExtractKeywords returns the most frequent content words, lowercased,
// ordered by frequency with ties broken alphabetically.
func ExtractKeywords(text string) []string {
	text = strings.ToLower(CleanText(text))
	if text == "" {
		return nil
	}

	freq := map[string]int{}

	for _, word := range wordRe.FindAllString(text, -1) {
		if len(word) < minKeywordLength {
			continue
		}

		if _, ok := stopwords[word]; ok {
			continue
		}

		freq[word]++
	}

	keywords := make([]string, 0, len(freq))
	for word := range freq {
		keywords = append(keywords, word)
	}

	sort.Slice(keywords, func(i, j int) bool {
		if freq[keywords[i]] != freq[keywords[j]] {
			return freq[keywords[i]] > freq[keywords[j]]
		}

		return keywords[i] < keywords[j]
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}

	return keywords
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

// SimilarTitles reports whether two titles overlap enough to be the same
// story published twice.
func SimilarTitles(a, b string) bool {
	wordsA := titleWords(a)
	wordsB := titleWords(b)

	if len(wordsA) == 0 || len(wordsB) == 0 {
		return false
	}

	overlap := 0

	for w := range wordsA {
		if _, ok := wordsB[w]; ok {
			overlap++
		}
	}

	longest := len(wordsA)
	if len(wordsB) > longest {
		longest = len(wordsB)
	}

	return float64(overlap)/float64(longest) > titleSimilarity
}

func titleWords(title string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range strings.Fields(strings.ToLower(title)) {
		words[w] = struct{}{}
	}

	return words
}
