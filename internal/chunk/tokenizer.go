package chunk

import (
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Lexical tokenization is shared between version building (per-chunk token
// sets) and query planning (query token sets), so both sides agree on word
// boundaries. Unicode segmentation handles prose better than a bare
// alphanumeric regexp: it keeps numbers intact and copes with accented text.
var (
	wordTokenizer   = unicode.NewUnicodeTokenizer()
	lowercaseFilter = lowercase.NewLowerCaseFilter()
)

// Tokens splits text into lowercased word tokens in document order.
func Tokens(text string) []string {
	stream := lowercaseFilter.Filter(wordTokenizer.Tokenize([]byte(text)))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}

// TokenSet returns the distinct lowercased tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokens(text) {
		set[tok] = struct{}{}
	}
	return set
}
