// Package biostate holds the per-profile Smart Bio state: the bio lifecycle
// (generate, edit, save, cancel, reset), citation visibility and the
// one-shot feedback flag.
package biostate

import (
	"context"
	"time"
)

// Donor carries the profile fields a bio is generated from.
type Donor struct {
	ID         string
	Name       string
	Occupation string
	Employer   string
	Location   string
	Email      string
	Industry   string
	WealthTier string
}

type Citation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Source is a fixed provenance entry shown under the bio.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// DefaultSources is attached to every generated bio.
var DefaultSources = []Source{
	{Name: "Perplexity", URL: "https://www.perplexity.ai"},
	{Name: "i360 Internal Data", URL: ""},
}

// ModelClientFallback tags a bio that was substituted locally because the
// generator call itself failed.
const ModelClientFallback = "client-fallback"

// GeneratedBio is what a BioGenerator returns.
type GeneratedBio struct {
	Headlines []string
	Citations []Citation
	Model     string
}

type BioGenerator interface {
	GenerateBio(ctx context.Context, donor Donor) (*GeneratedBio, error)
}

// WealthLookup returns a one-line wealth summary, or "" when nothing is known.
type WealthLookup interface {
	WealthSummary(ctx context.Context, donor Donor) (string, error)
}

// SmartBio is the committed bio shown on the profile.
type SmartBio struct {
	Headlines     []string
	WealthSummary string
	Sources       []Source
	Citations     []Citation
	Confidence    Confidence
	LastGenerated time.Time
	Model         string
}

func (b *SmartBio) clone() *SmartBio {
	if b == nil {
		return nil
	}
	out := *b
	out.Headlines = cloneStrings(b.Headlines)
	out.Sources = append([]Source(nil), b.Sources...)
	out.Citations = append([]Citation(nil), b.Citations...)
	return &out
}

type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateDisplayed  State = "displayed"
	StateEditing    State = "editing"
	StateErrored    State = "errored"
)

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
