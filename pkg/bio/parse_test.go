package bio

import "testing"

func TestParseStructured(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantOK      bool
		wantBio     string
		wantSources int
	}{
		{
			name:        "plain json",
			content:     `{"bio":"Jane Doe is CFO at Acme.","sources":[{"title":"Acme","url":"https://acme.com/team"}]}`,
			wantOK:      true,
			wantBio:     "Jane Doe is CFO at Acme.",
			wantSources: 1,
		},
		{
			name:        "fenced json",
			content:     "```json\n{\"bio\":\"Jane Doe is CFO.\",\"sources\":[]}\n```",
			wantOK:      true,
			wantBio:     "Jane Doe is CFO.",
			wantSources: 0,
		},
		{
			name:        "sources without url are dropped",
			content:     `{"bio":"Bio.","sources":[{"title":"Nothing","url":""},{"title":"","url":"https://www.bloomberg.com/a"}]}`,
			wantOK:      true,
			wantBio:     "Bio.",
			wantSources: 1,
		},
		{
			name:    "prose",
			content: "Jane Doe is the CFO of Acme. She joined in 2015.",
			wantOK:  false,
		},
		{
			name:    "json without bio",
			content: `{"summary":"x"}`,
			wantOK:  false,
		},
		{
			name:    "broken json",
			content: `{"bio": "unterminated`,
			wantOK:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseStructured(tt.content)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Bio != tt.wantBio {
				t.Errorf("Bio = %q, want %q", got.Bio, tt.wantBio)
			}
			if len(got.Sources) != tt.wantSources {
				t.Errorf("Sources = %d, want %d", len(got.Sources), tt.wantSources)
			}
		})
	}
}

func TestParseStructuredFillsMissingTitle(t *testing.T) {
	got, ok := ParseStructured(`{"bio":"Bio.","sources":[{"title":"","url":"https://www.bloomberg.com/a"}]}`)
	if !ok {
		t.Fatal("expected structured content")
	}
	if got.Sources[0].Title != "bloomberg.com" {
		t.Errorf("Title = %q, want bloomberg.com", got.Sources[0].Title)
	}
}

func TestLooksStructured(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{`{"bio": "cut off`, true},
		{"```json\n{\"bio\":", true},
		{"  {}", true},
		{"Jane Doe is CFO.", false},
		{"```\nplain text\n```", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := LooksStructured(tt.content); got != tt.want {
			t.Errorf("LooksStructured(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}

func TestSourcesFromURLs(t *testing.T) {
	got := SourcesFromURLs([]string{"https://www.forbes.com/profile/x", "", "garbage"})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "forbes.com" || got[1].Title != "Source" {
		t.Errorf("titles = %q, %q", got[0].Title, got[1].Title)
	}
}
