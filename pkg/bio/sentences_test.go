package bio

import (
	"reflect"
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "already punctuated",
			text: "A. B! C?",
			want: []string{"A.", "B!", "C?"},
		},
		{
			name: "final fragment gets a period",
			text: "A. B without punctuation",
			want: []string{"A.", "B without punctuation."},
		},
		{
			name: "newline after period",
			text: "First line.\nSecond line.",
			want: []string{"First line.", "Second line."},
		},
		{
			name: "trailing empty piece dropped",
			text: "One. Two. ",
			want: []string{"One.", "Two."},
		},
		{
			name: "whitespace only",
			text: "   ",
			want: []string{},
		},
		{
			name: "decimal numbers are not boundaries",
			text: "Raised $1.5M in 2020. Serves on two boards",
			want: []string{"Raised $1.5M in 2020.", "Serves on two boards."},
		},
		{
			name: "truncated to five",
			text: "S1. S2. S3. S4. S5. S6. S7.",
			want: []string{"S1.", "S2.", "S3.", "S4.", "S5."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitSentences(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestSplitSentencesNeverExceedsMax(t *testing.T) {
	text := strings.Repeat("Another fact about the donor. ", 40)
	if got := SplitSentences(text); len(got) != MaxSentences {
		t.Errorf("len = %d, want %d", len(got), MaxSentences)
	}
}

func TestTitleFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.forbes.com/profile/x", "forbes.com"},
		{"https://en.wikipedia.org/wiki/Jane_Doe", "en.wikipedia.org"},
		{"https://www.sec.gov:443/cgi-bin/browse", "sec.gov"},
		{"not a url", "Source"},
		{"://missing-scheme", "Source"},
		{"", "Source"},
		{"#", "Source"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := TitleFromURL(tt.url); got != tt.want {
				t.Errorf("TitleFromURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}
