// Package summary extracts concise actionable summaries from knowledge-base
// pages. Extraction is rule based: titles, section headers, normative
// statements (MUST, CANNOT, SHOULD) and format examples. No model call is
// involved, so summaries are deterministic for fixed content.
package summary

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/knowhub/wikidex/internal/corpus"
)

// DefaultMaxLength bounds a single page summary.
const DefaultMaxLength = 800

// directivePattern pairs a normative-language matcher with its label.
type directivePattern struct {
	re    *regexp.Regexp
	label string
}

var directivePatterns = []directivePattern{
	{regexp.MustCompile(`(?i)(?:must|shall|required?|mandatory|always)\s+([^.!?\n]{10,150}[.!?]?)`), "MUST"},
	{regexp.MustCompile(`(?i)(?:cannot|must\s+not|shall\s+not|never|prohibited?|forbidden)\s+([^.!?\n]{10,150}[.!?]?)`), "CANNOT"},
	{regexp.MustCompile(`(?i)(?:should|recommended?)\s+([^.!?\n]{10,150}[.!?]?)`), "SHOULD"},
}

// formatPatterns pick up structured data worth surfacing verbatim:
// declared formats, fenced code blocks, inline examples.
var formatPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)format\\s*(?:is)?:?\\s*[`\n]([^`\n]{5,100})"),
	regexp.MustCompile("(?is)```(?:text)?\\s*\n?([^`]{5,200})\n?```"),
	regexp.MustCompile(`(?i)(?:example|e\.g\.)[:\s]+([^.\n]{10,100})`),
}

var (
	titleRe  = regexp.MustCompile(`(?m)^#+ (.+)$`)
	headerRe = regexp.MustCompile(`(?m)^##+ (.+)$`)
)

// Summarizer produces extractive page summaries.
type Summarizer struct {
	maxLength int
}

// New creates a summarizer. maxLength <= 0 selects DefaultMaxLength.
func New(maxLength int) *Summarizer {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	return &Summarizer{maxLength: maxLength}
}

// Summarize condenses one page into its title, section map, key rules and
// formats. The result never exceeds the configured maximum length.
func (s *Summarizer) Summarize(path, content string) string {
	var parts []string

	if m := titleRe.FindStringSubmatch(content); m != nil {
		parts = append(parts, fmt.Sprintf("**%s**", m[1]))
	}

	if headers := sectionHeaders(content); len(headers) > 0 {
		parts = append(parts, "Sections: "+strings.Join(headers, ", "))
	}

	if rules := keyRules(content); len(rules) > 0 {
		parts = append(parts, "**Key Rules:**")
		parts = append(parts, rules...)
	}

	if formats := formatSnippets(content); len(formats) > 0 {
		parts = append(parts, "**Formats/Examples:**")
		parts = append(parts, formats...)
	}

	text := strings.Join(parts, "\n")
	if len(text) > s.maxLength {
		cut := s.maxLength - 50
		if cut < 0 {
			cut = 0
		}
		text = clip(text, cut) + "\n... [truncated, load " + path + " for full content]"
	}
	return text
}

// clip truncates s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// SummarizeAll summarizes every document, keyed by path.
func (s *Summarizer) SummarizeAll(docs []corpus.Document) map[string]string {
	summaries := make(map[string]string, len(docs))
	for _, doc := range docs {
		summaries[doc.Path] = s.Summarize(doc.Path, doc.Content)
	}
	return summaries
}

// sectionHeaders returns up to five short H2+ headers in document order.
func sectionHeaders(content string) []string {
	matches := headerRe.FindAllStringSubmatch(content, 7)
	var headers []string
	for _, m := range matches {
		if len(m[1]) < 50 {
			headers = append(headers, m[1])
		}
		if len(headers) == 5 {
			break
		}
	}
	return headers
}

// keyRules extracts normative statements, at most three per directive and
// six overall. Fragments shorter than 20 characters carry too little
// context to be useful and are skipped.
func keyRules(content string) []string {
	var rules []string
	for _, p := range directivePatterns {
		matches := p.re.FindAllStringSubmatch(content, 3)
		for _, m := range matches {
			fragment := strings.TrimSpace(strings.ToLower(m[1]))
			if len(fragment) <= 20 {
				continue
			}
			rules = append(rules, fmt.Sprintf("- %s: %s", p.label, clip(fragment, 100)))
			if len(rules) == 6 {
				return rules
			}
		}
	}
	return rules
}

// formatSnippets extracts up to three declared formats or examples.
func formatSnippets(content string) []string {
	var formats []string
	for _, re := range formatPatterns {
		matches := re.FindAllStringSubmatch(content, 2)
		for _, m := range matches {
			clean := strings.TrimSpace(m[1])
			if len(clean) <= 5 {
				continue
			}
			formats = append(formats, fmt.Sprintf("  `%s`", clip(clean, 60)))
			if len(formats) == 3 {
				return formats
			}
		}
	}
	return formats
}
