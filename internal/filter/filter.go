// Package filter implements the heuristic quality gate that separates
// article-like pages from navigation, listings, and comment threads.
package filter

import (
	"regexp"
	"strings"

	"github.com/freeman-jiang/resonant/internal/link"
)

const (
	// minLineWords is the word count below which a line is treated as a
	// short fragment (navigation, ads) and excluded from the token pool.
	minLineWords = 8
	// minLineRatio is the share of lines that must meet minLineWords.
	minLineRatio = 0.75
	// longLineWords marks a line as long-form, high-quality prose.
	longLineWords = 80
	// longLineShare accepts the page outright when long lines carry this
	// share of the total word count.
	longLineShare = 0.65

	minSentences    = 15
	minWords        = 300
	minAvgWordLen   = 3.0
	minAvgSentWords = 8.0
	maxAvgSentWords = 100.0
)

var commentPathPattern = regexp.MustCompile(`/comments?(/|$)`)

// ShouldKeep decides whether a crawled page's extracted text is worth
// storing. Whitelisted domains always pass; comment pages never do.
func ShouldKeep(l link.Link, content string) bool {
	if IsWhitelisted(l.RawDomain()) {
		return true
	}
	if commentPathPattern.MatchString(l.URL) {
		return false
	}

	words, lineLengths := tokenizeByLine(content)

	if rejectByLineLength(lineLengths) {
		return false
	}

	sentences := countSentences(content)
	if sentences == 0 || len(words) == 0 {
		return false
	}

	avgSentLen := float64(len(words)) / float64(sentences)
	totalLen := 0
	for _, w := range words {
		totalLen += len(w)
	}
	avgWordLen := float64(totalLen) / float64(len(words))

	return sentences >= minSentences &&
		len(words) >= minWords &&
		avgWordLen > minAvgWordLen &&
		avgSentLen >= minAvgSentWords &&
		avgSentLen <= maxAvgSentWords
}

// tokenizeByLine splits content into non-blank lines and returns the words
// of every line meeting minLineWords, plus the per-line word counts before
// any filtering.
func tokenizeByLine(content string) ([]string, []int) {
	var (
		words   []string
		lengths []int
	)
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lengths = append(lengths, len(fields))
		if len(fields) >= minLineWords {
			words = append(words, fields...)
		}
	}
	return words, lengths
}

// rejectByLineLength applies the short-fragment heuristics: a page passes
// when long lines dominate the word count, or when enough of its lines
// clear the minimum word threshold.
func rejectByLineLength(lengths []int) bool {
	if len(lengths) == 0 {
		return true
	}

	totalWords := 0
	longWords := 0
	qualifying := 0
	for _, n := range lengths {
		totalWords += n
		if n >= longLineWords {
			longWords += n
		}
		if n >= minLineWords {
			qualifying++
		}
	}

	if totalWords > 0 && float64(longWords)/float64(totalWords) >= longLineShare {
		return false
	}

	return float64(qualifying)/float64(len(lengths)) < minLineRatio
}

var sentenceEndPattern = regexp.MustCompile(`[.!?]+(\s|$)`)

func countSentences(content string) int {
	return len(sentenceEndPattern.FindAllString(content, -1))
}
