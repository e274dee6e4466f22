package bio

import (
	"encoding/json"
	"strings"
)

// Source is a titled citation as returned by the search model.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Structured is the JSON object requested through the response schema.
type Structured struct {
	Bio     string   `json:"bio"`
	Sources []Source `json:"sources"`
}

// Schema is the JSON schema sent as the structured response format.
func Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"bio": map[string]interface{}{"type": "string"},
			"sources": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"title": map[string]interface{}{"type": "string"},
						"url":   map[string]interface{}{"type": "string"},
					},
					"required": []string{"title", "url"},
				},
			},
		},
		"required": []string{"bio", "sources"},
	}
}

// ParseStructured extracts the {bio, sources} object from model output.
// Markdown code fences around the JSON are tolerated. ok is false when the
// content is not JSON or carries no bio text.
func ParseStructured(content string) (Structured, bool) {
	if !LooksStructured(content) {
		return Structured{}, false
	}
	raw := stripFence(strings.TrimSpace(content))

	var out Structured
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Structured{}, false
	}
	if strings.TrimSpace(out.Bio) == "" {
		return Structured{}, false
	}

	sources := out.Sources[:0]
	for _, s := range out.Sources {
		if strings.TrimSpace(s.URL) == "" {
			continue
		}
		if strings.TrimSpace(s.Title) == "" {
			s.Title = TitleFromURL(s.URL)
		}
		sources = append(sources, s)
	}
	out.Sources = sources
	return out, true
}

// LooksStructured reports whether content is a JSON object, optionally
// wrapped in a markdown fence. A truncated object still counts.
func LooksStructured(content string) bool {
	return strings.HasPrefix(stripFence(strings.TrimSpace(content)), "{")
}

// SourcesFromURLs turns a bare list of citation URLs into titled sources.
func SourcesFromURLs(urls []string) []Source {
	sources := make([]Source, 0, len(urls))
	for _, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		sources = append(sources, Source{Title: TitleFromURL(u), URL: u})
	}
	return sources
}

func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
