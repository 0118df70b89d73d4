package search

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/knowhub/wikidex/internal/chunk"
)

// regexOperators are the characters whose presence marks a query as a
// pattern rather than plain prose.
const regexOperators = `.*+?[](){}|^$\`

// QueryPlan is the analyzed form of one query, shared by all streams so
// the raw string is parsed exactly once.
type QueryPlan struct {
	// Raw is the query as received.
	Raw string
	// HasPattern is true when the query contains regex operators.
	HasPattern bool
	// Pattern is the compiled case-insensitive regex. Nil when the query is
	// plain prose or the pattern failed to compile.
	Pattern *regexp.Regexp
	// Literal is the lowercased raw query, used for substring matching when
	// a malformed pattern falls back to literal search.
	Literal string
	// Cleaned is the query with regex operators stripped, for embedding.
	Cleaned string
	// Tokens is the lexical token set of the cleaned query.
	Tokens map[string]struct{}
	// TokenCount is the distinct token count, the keyword-score denominator.
	TokenCount int
}

// NewPlan analyzes a query. Malformed patterns never surface as errors:
// the query degrades to literal substring matching so a stray bracket in
// user input still returns results.
func NewPlan(query string) *QueryPlan {
	p := &QueryPlan{
		Raw:        query,
		HasPattern: strings.ContainsAny(query, regexOperators),
		Literal:    strings.ToLower(strings.TrimSpace(query)),
	}

	if p.HasPattern {
		re, err := regexp.Compile("(?is)" + query)
		if err != nil {
			slog.Debug("query_pattern_fallback",
				slog.String("query", query),
				slog.String("error", err.Error()))
		} else {
			p.Pattern = re
		}
	}

	p.Cleaned = stripOperators(query)
	p.Tokens = chunk.TokenSet(p.Cleaned)
	p.TokenCount = len(p.Tokens)
	return p
}

// stripOperators replaces regex operator characters with spaces so the
// remaining prose can be embedded and tokenized.
func stripOperators(query string) string {
	var b strings.Builder
	b.Grow(len(query))
	for _, r := range query {
		if strings.ContainsRune(regexOperators, r) {
			b.WriteRune(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
