package vectorize

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Tokenize lowercases text, replaces non-word characters with spaces,
// splits on whitespace, and drops tokens of length 1 or less.
func Tokenize(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := fields[:0]
	for _, tok := range fields {
		if len(tok) <= 1 {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// Stop words filtered out when deriving keywords from content.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "or": true, "we": true, "our": true, "your": true,
	"can": true, "will": true, "what": true, "how": true, "all": true,
}

// IsStopWord reports whether a token is on the stop-word list.
func IsStopWord(token string) bool {
	return stopWords[strings.ToLower(token)]
}
