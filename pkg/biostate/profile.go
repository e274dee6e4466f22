package biostate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"crimson-crm-be/pkg/kvstore"

	"golang.org/x/sync/errgroup"
)

const generationErrorMessage = "Unable to generate a bio right now. Please try again."

// Profile is the Smart Bio state of one donor profile view. It is safe for
// concurrent use; the generator and wealth calls run without holding the lock.
type Profile struct {
	mu        sync.Mutex
	donor     Donor
	generator BioGenerator
	wealth    WealthLookup
	now       func() time.Time

	lifecycle lifecycle
	citations *CitationVisibility
	feedback  *feedbackTracker
}

type Option func(*Profile)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Profile) {
		p.now = now
	}
}

// MountProfile creates the state for a profile view and loads the donor's
// permanently hidden citations from store. wealth may be nil.
func MountProfile(ctx context.Context, donor Donor, store kvstore.Store, generator BioGenerator, wealth WealthLookup, opts ...Option) (*Profile, error) {
	p := &Profile{
		donor:     donor,
		generator: generator,
		wealth:    wealth,
		now:       time.Now,
		lifecycle: lifecycle{state: StateIdle},
		citations: newCitationVisibility(store, donor.ID),
		feedback:  &feedbackTracker{store: store, donorID: donor.ID},
	}
	for _, opt := range opts {
		opt(p)
	}

	if err := p.citations.load(ctx); err != nil {
		return nil, fmt.Errorf("load hidden citations for donor %s: %w", donor.ID, err)
	}
	return p, nil
}

// GenerationReport describes a finished generation. BioErr and WealthErr are the
// failures that were absorbed into the result.
type GenerationReport struct {
	Bio       *SmartBio
	BioErr    error
	WealthErr error
}

// Generate fetches a bio and the wealth summary concurrently and waits for both.
// Either task may fail without failing the whole generation. A newer Generate call
// supersedes this one, whose result is then discarded with ErrStaleGeneration.
func (p *Profile) Generate(ctx context.Context) (*GenerationReport, error) {
	p.mu.Lock()
	token, err := p.lifecycle.begin()
	donor := p.donor
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var (
		generated *GeneratedBio
		bioErr    error
		wealth    string
		wealthErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				bioErr = fmt.Errorf("bio generator panicked: %v", r)
			}
		}()
		generated, bioErr = p.generator.GenerateBio(ctx, donor)
		return nil
	})
	if p.wealth != nil {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					wealthErr = fmt.Errorf("wealth lookup panicked: %v", r)
				}
			}()
			wealth, wealthErr = p.wealth.WealthSummary(ctx, donor)
			return nil
		})
	}
	_ = g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.lifecycle.current(token) {
		return nil, ErrStaleGeneration
	}
	if err := ctx.Err(); err != nil {
		p.lifecycle.fail(generationErrorMessage)
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	bio := &SmartBio{
		Sources:       append([]Source(nil), DefaultSources...),
		Confidence:    ConfidenceHigh,
		LastGenerated: p.now(),
	}

	if bioErr == nil && (generated == nil || len(generated.Headlines) == 0) {
		bioErr = errors.New("generator returned no headlines")
	}
	if bioErr != nil {
		bio.Headlines = []string{genericHeadline(donor)}
		bio.Model = ModelClientFallback
	} else {
		bio.Headlines = cloneStrings(generated.Headlines)
		bio.Citations = append([]Citation(nil), generated.Citations...)
		bio.Model = generated.Model
	}

	if wealthErr == nil {
		bio.WealthSummary = strings.TrimSpace(wealth)
	}

	p.lifecycle.complete(bio)
	p.citations.setCitations(bio.Citations)
	p.feedback.reset()

	return &GenerationReport{Bio: bio.clone(), BioErr: bioErr, WealthErr: wealthErr}, nil
}

func genericHeadline(donor Donor) string {
	return fmt.Sprintf("%s is a valued supporter of our organization.", donor.Name)
}

func (p *Profile) BeginEdit() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.beginEdit()
}

// EditSentence replaces one sentence of the edit buffer.
func (p *Profile) EditSentence(index int, text string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.editSentence(index, text)
}

// SetEdited replaces the whole edit buffer.
func (p *Profile) SetEdited(sentences []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.setEdited(sentences)
}

func (p *Profile) Save() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.save()
}

func (p *Profile) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.cancel()
}

// Reset restores the bio to the generated text, discarding saved edits.
func (p *Profile) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lifecycle.reset()
}

// HideCitation removes a citation from the visible list, for this view only or
// durably for the donor.
func (p *Profile) HideCitation(ctx context.Context, citation Citation, permanent bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.citations.hide(ctx, citation, permanent)
}

// RestoreCitation undoes a hide recorded in the given scope.
func (p *Profile) RestoreCitation(ctx context.Context, url string, wasPermanent bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.citations.restore(ctx, url, wasPermanent)
}

func (p *Profile) VisibleCitations() []Citation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.citations.visible()
}

func (p *Profile) HiddenCitations() []HiddenCitation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.citations.hidden()
}

// SubmitPositive records positive feedback. It returns a nil record when
// feedback was already given for the current bio.
func (p *Profile) SubmitPositive(ctx context.Context) (*FeedbackRecord, error) {
	return p.submitFeedback(ctx, FeedbackPositive, "")
}

// SubmitNegative records negative feedback with an optional comment. It returns
// a nil record when feedback was already given for the current bio.
func (p *Profile) SubmitNegative(ctx context.Context, comment string) (*FeedbackRecord, error) {
	return p.submitFeedback(ctx, FeedbackNegative, comment)
}

func (p *Profile) submitFeedback(ctx context.Context, typ FeedbackType, comment string) (*FeedbackRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lifecycle.bio == nil {
		return nil, ErrNoActiveBio
	}
	return p.feedback.submit(ctx, typ, comment, p.lifecycle.bio.LastGenerated, p.now())
}

func (p *Profile) FeedbackGiven() FeedbackType {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feedback.given
}

func (p *Profile) Donor() Donor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.donor
}

// Snapshot is a copy of the whole profile state.
type Snapshot struct {
	DonorID       string
	State         State
	Bio           *SmartBio
	OriginalText  []string
	EditedText    []string
	Visible       []Citation
	Hidden        []HiddenCitation
	FeedbackGiven FeedbackType
	Error         string
}

func (p *Profile) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		DonorID:       p.donor.ID,
		State:         p.lifecycle.state,
		Bio:           p.lifecycle.bio.clone(),
		OriginalText:  cloneStrings(p.lifecycle.originalText),
		EditedText:    cloneStrings(p.lifecycle.editedText),
		Visible:       p.citations.visible(),
		Hidden:        p.citations.hidden(),
		FeedbackGiven: p.feedback.given,
		Error:         p.lifecycle.lastError,
	}
}

// ExportText renders the committed bio with its visible citations as plain text.
func (p *Profile) ExportText() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	bio := p.lifecycle.bio
	if bio == nil {
		return "", ErrNoActiveBio
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", p.donor.Name)
	b.WriteString(strings.Join(bio.Headlines, " "))
	b.WriteString("\n")
	if bio.WealthSummary != "" {
		fmt.Fprintf(&b, "\n%s\n", bio.WealthSummary)
	}
	if visible := p.citations.visible(); len(visible) > 0 {
		b.WriteString("\nSources:\n")
		for _, c := range visible {
			fmt.Fprintf(&b, "- %s (%s)\n", c.Title, c.URL)
		}
	}
	fmt.Fprintf(&b, "\nGenerated %s\n", bio.LastGenerated.Format(time.RFC1123))
	return b.String(), nil
}
