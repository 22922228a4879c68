package detector

import (
	"context"
	"regexp"
	"strings"

	"question-exporter/internal/classifier"
)

// minContentLength is the shortest trimmed text worth classifying.
const minContentLength = 3

// minRemoteWords: undecided texts of this many words or fewer are not
// worth a remote call and default to not-a-question.
const minRemoteWords = 2

var (
	urlRe        = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)
	wordRe       = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

type verdict int

const (
	verdictUndecided verdict = iota
	verdictQuestion
	verdictNotQuestion
)

// Detector resolves each text with free local rules first and forwards
// only the genuinely ambiguous remainder to the remote classifier, one
// batched call per detect invocation.
type Detector struct {
	strong map[string]struct{}
	client classifier.Client
}

// New builds a detector for the given language. extraKeywords extend
// the strong interrogative set. client may be nil, in which case
// undecided texts default to not-a-question.
func New(language string, extraKeywords []string, client classifier.Client) *Detector {
	strong := make(map[string]struct{})
	for _, k := range keywordsForLanguage(language) {
		strong[k] = struct{}{}
	}
	for _, k := range extraKeywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			strong[k] = struct{}{}
		}
	}
	return &Detector{strong: strong, client: client}
}

// DetectBatch classifies contents, preserving order and length.
func (d *Detector) DetectBatch(ctx context.Context, contents []string) []bool {
	results := make([]bool, len(contents))

	var remoteIdx []int
	var remoteTexts []string

	for i, content := range contents {
		switch d.match(content) {
		case verdictQuestion:
			results[i] = true
		case verdictNotQuestion:
			// stays false
		case verdictUndecided:
			trimmed := strings.TrimSpace(content)
			if d.client != nil && len(strings.Fields(trimmed)) > minRemoteWords {
				remoteIdx = append(remoteIdx, i)
				remoteTexts = append(remoteTexts, trimmed)
			}
		}
	}

	if len(remoteTexts) > 0 {
		for j, isQ := range d.client.ClassifyBatch(ctx, remoteTexts) {
			results[remoteIdx[j]] = isQ
		}
	}

	return results
}

// match applies the local rules in order, first match wins.
func (d *Detector) match(content string) verdict {
	content = strings.TrimSpace(content)
	if len([]rune(content)) < minContentLength {
		return verdictNotQuestion
	}

	// Strip URLs so a "?" in a query string never counts.
	withoutURLs := urlRe.ReplaceAllString(content, "")

	if strings.Contains(withoutURLs, "?") {
		return verdictQuestion
	}

	words := wordRe.FindAllString(strings.ToLower(withoutURLs), -1)
	if len(words) > 0 {
		if _, ok := d.strong[words[0]]; ok {
			return verdictQuestion
		}
	}

	return verdictUndecided
}

// Normalize canonicalizes text for deduplication only: trimmed,
// lower-cased, whitespace runs collapsed. Punctuation is preserved on
// purpose, it is part of dedupe identity.
func Normalize(content string) string {
	content = strings.ToLower(strings.TrimSpace(content))
	return whitespaceRe.ReplaceAllString(content, " ")
}
