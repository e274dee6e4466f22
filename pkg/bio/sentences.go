package bio

import (
	"net/url"
	"strings"
)

// MaxSentences caps the number of headline sentences kept from a generated bio.
const MaxSentences = 5

// sentenceBreaks are checked in order at every position of the text.
// The punctuation stays with the sentence it closes; the separator after it is dropped.
var sentenceBreaks = []string{". ", ".\n", "! ", "? "}

// SplitSentences cuts prose into at most MaxSentences trimmed sentences.
// Fragments without terminal punctuation get a trailing period.
func SplitSentences(text string) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(text); i++ {
		for _, sep := range sentenceBreaks {
			if strings.HasPrefix(text[i:], sep) {
				pieces = append(pieces, text[start:i+1])
				start = i + len(sep)
				i = start - 1
				break
			}
		}
	}
	pieces = append(pieces, text[start:])

	sentences := make([]string, 0, MaxSentences)
	for _, p := range pieces {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !hasTerminalPunctuation(p) {
			p += "."
		}
		sentences = append(sentences, p)
		if len(sentences) == MaxSentences {
			break
		}
	}
	return sentences
}

func hasTerminalPunctuation(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

// TitleFromURL derives a display title from a citation URL: its host without a leading "www.".
// Anything that is not an absolute URL yields "Source".
func TitleFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return "Source"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
