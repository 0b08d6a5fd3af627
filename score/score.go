package score

import (
	"math"
	"strings"

	"github.com/recallkit/recall/core"
	"github.com/recallkit/recall/vectorize"
)

// Signal weights. Additive, tuned together with the store's 0.3 threshold.
const (
	semanticWeight = 0.6  // cosine similarity share
	keywordBonus   = 0.35 // per exact keyword or title substring hit
	contentBonus   = 0.1  // per query word found verbatim in content
	fuzzyWeight    = 0.2  // scales fuzzyTokenSimilarity per qualifying pair
	categoryBonus  = 0.2  // category substring hit
	fuzzyThreshold = 0.7  // minimum similarity for a fuzzy pair to count
)

// Cosine returns the cosine similarity of two vectors. Dimension mismatch
// or a zero-magnitude operand yields 0 rather than an error.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// EditDistance computes the Levenshtein distance between two strings with
// unit cost for insert, delete, and substitute.
func EditDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	rows := len(r1) + 1
	cols := len(r2) + 1
	d := make([][]int, rows)
	for i := range d {
		d[i] = make([]int, cols)
		d[i][0] = i
	}
	for j := 1; j < cols; j++ {
		d[0][j] = j
	}

	for i := 1; i < rows; i++ {
		for j := 1; j < cols; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			d[i][j] = m
		}
	}
	return d[rows-1][cols-1]
}

// FuzzyTokenSimilarity maps edit distance into [0,1]:
// 1 - distance/max(len). Two empty tokens are identical.
func FuzzyTokenSimilarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(EditDistance(a, b))/float64(longest)
}

// Relevance scores a knowledge entry against a query. The query embedding
// is computed once by the caller and passed in. Returns the unbounded
// additive score, the dominant match type, and the terms that matched.
func Relevance(query string, queryVec []float64, entry *core.KnowledgeEntry) (float64, core.MatchType, []string) {
	queryLower := strings.ToLower(query)
	queryTokens := vectorize.Tokenize(query)

	var relevance float64
	var matched []string
	var keywordHits, fuzzyHits int

	semantic := Cosine(queryVec, entry.Embedding)
	relevance += semantic * semanticWeight

	for _, kw := range entry.Keywords {
		kwLower := strings.ToLower(kw)
		if kwLower != "" && strings.Contains(queryLower, kwLower) {
			relevance += keywordBonus
			matched = append(matched, kwLower)
			keywordHits++
		}
	}

	titleLower := strings.ToLower(entry.Title)
	contentTokens := make(map[string]bool)
	for _, tok := range vectorize.Tokenize(entry.Content) {
		contentTokens[tok] = true
	}

	for _, tok := range queryTokens {
		if strings.Contains(titleLower, tok) {
			relevance += keywordBonus
			matched = append(matched, tok)
			keywordHits++
		}
		if contentTokens[tok] {
			relevance += contentBonus
		}
	}

	// Fuzzy pairs between query tokens and keywords that did not hit exactly
	for _, tok := range queryTokens {
		for _, kw := range entry.Keywords {
			kwLower := strings.ToLower(kw)
			if kwLower == "" || strings.Contains(queryLower, kwLower) {
				continue
			}
			if sim := FuzzyTokenSimilarity(tok, kwLower); sim > fuzzyThreshold {
				relevance += sim * fuzzyWeight
				matched = append(matched, kwLower)
				fuzzyHits++
			}
		}
	}

	categoryLower := strings.ToLower(entry.Category)
	if categoryLower != "" && strings.Contains(queryLower, categoryLower) {
		relevance += categoryBonus
	}

	matchType := core.MatchSemantic
	if keywordHits > 0 {
		matchType = core.MatchKeyword
	} else if fuzzyHits > 0 && semantic == 0 {
		matchType = core.MatchFuzzy
	}

	return relevance, matchType, dedupe(matched)
}

func dedupe(terms []string) []string {
	if len(terms) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
