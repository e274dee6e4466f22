package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crimson-crm-be/internal/dto"
	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/internal/pkg/mailer"
	"crimson-crm-be/internal/repository/memory"
	"crimson-crm-be/pkg/biostate"
	"crimson-crm-be/pkg/events"
	"crimson-crm-be/pkg/kvstore"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("profile session not found")
	ErrInvalidEdit     = errors.New("edit needs either index and text or sentences")
)

type IProfileService interface {
	Mount(ctx context.Context, req *dto.MountProfileRequest) (*dto.ProfileSnapshotResponse, error)
	Show(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error)
	Unmount(ctx context.Context, sessionId uuid.UUID) error

	Generate(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error)
	BeginEdit(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error)
	UpdateEdit(ctx context.Context, sessionId uuid.UUID, req *dto.EditBioRequest) (*dto.ProfileSnapshotResponse, error)
	Save(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error)
	Cancel(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error)
	Reset(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error)
	Export(ctx context.Context, sessionId uuid.UUID) (string, error)
	Email(ctx context.Context, sessionId uuid.UUID, req *dto.EmailBioRequest) error

	HideCitation(ctx context.Context, sessionId uuid.UUID, req *dto.HideCitationRequest) (*dto.ProfileSnapshotResponse, error)
	RestoreCitation(ctx context.Context, sessionId uuid.UUID, req *dto.RestoreCitationRequest) (*dto.ProfileSnapshotResponse, error)

	SubmitFeedback(ctx context.Context, sessionId uuid.UUID, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error)
}

type profileService struct {
	sessions  *memory.SessionRepository
	store     kvstore.Store
	generator biostate.BioGenerator
	wealth    biostate.WealthLookup
	publisher IPublisherService
	mailer    mailer.IEmailService
	logger    logger.ILogger
}

// NewProfileService wires profile sessions to their collaborators. publisher and
// emailService may be nil.
func NewProfileService(
	sessions *memory.SessionRepository,
	store kvstore.Store,
	generator biostate.BioGenerator,
	wealth biostate.WealthLookup,
	publisher IPublisherService,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IProfileService {
	return &profileService{
		sessions:  sessions,
		store:     store,
		generator: generator,
		wealth:    wealth,
		publisher: publisher,
		mailer:    emailService,
		logger:    log,
	}
}

func (s *profileService) Mount(ctx context.Context, req *dto.MountProfileRequest) (*dto.ProfileSnapshotResponse, error) {
	donor := biostate.Donor{
		ID:         strings.TrimSpace(req.DonorId),
		Name:       strings.TrimSpace(req.Name),
		Occupation: strings.TrimSpace(req.Occupation),
		Employer:   strings.TrimSpace(req.Employer),
		Location:   strings.TrimSpace(req.Location),
		Email:      strings.TrimSpace(req.Email),
		Industry:   strings.TrimSpace(req.Industry),
		WealthTier: strings.TrimSpace(req.WealthTier),
	}

	profile, err := biostate.MountProfile(ctx, donor, s.store, s.generator, s.wealth)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	s.sessions.Save(id, profile)

	s.logger.Info("ProfileService", "Profile session mounted", map[string]interface{}{
		"session_id": id,
		"donor_id":   donor.ID,
		"hidden":     len(profile.HiddenCitations()),
	})
	return toSnapshotResponse(id, profile.Snapshot()), nil
}

func (s *profileService) Show(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error) {
	profile, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}
	return toSnapshotResponse(sessionId, profile.Snapshot()), nil
}

func (s *profileService) Unmount(ctx context.Context, sessionId uuid.UUID) error {
	if !s.sessions.Delete(sessionId) {
		return ErrSessionNotFound
	}
	return nil
}

func (s *profileService) Generate(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error) {
	profile, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}
	donor := profile.Donor()

	report, err := profile.Generate(ctx)
	if err != nil {
		if errors.Is(err, biostate.ErrGenerationFailed) {
			s.logger.Error("ProfileService", "Bio generation failed", map[string]interface{}{
				"session_id": sessionId,
				"donor_id":   donor.ID,
				"error":      err,
			})
			return toSnapshotResponse(sessionId, profile.Snapshot()), nil
		}
		return nil, err
	}

	if report.BioErr != nil {
		s.logger.Warn("ProfileService", "Bio generator failed, generic bio used", map[string]interface{}{
			"donor_id": donor.ID,
			"error":    report.BioErr,
		})
	}
	if report.WealthErr != nil {
		s.logger.Warn("ProfileService", "Wealth lookup failed, wealth line omitted", map[string]interface{}{
			"donor_id": donor.ID,
			"error":    report.WealthErr,
		})
	}

	s.publish(ctx, events.New(events.BioGenerated, map[string]interface{}{
		"session_id": sessionId.String(),
		"donor_id":   donor.ID,
		"model":      report.Bio.Model,
		"sentences":  len(report.Bio.Headlines),
		"citations":  len(report.Bio.Citations),
		"has_wealth": report.Bio.WealthSummary != "",
	}))

	return toSnapshotResponse(sessionId, profile.Snapshot()), nil
}

func (s *profileService) BeginEdit(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error) {
	return s.apply(sessionId, (*biostate.Profile).BeginEdit)
}

func (s *profileService) UpdateEdit(ctx context.Context, sessionId uuid.UUID, req *dto.EditBioRequest) (*dto.ProfileSnapshotResponse, error) {
	switch {
	case req.Sentences != nil:
		return s.apply(sessionId, func(p *biostate.Profile) error {
			return p.SetEdited(req.Sentences)
		})
	case req.Index != nil:
		return s.apply(sessionId, func(p *biostate.Profile) error {
			return p.EditSentence(*req.Index, req.Text)
		})
	default:
		return nil, ErrInvalidEdit
	}
}

func (s *profileService) Save(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error) {
	return s.apply(sessionId, (*biostate.Profile).Save)
}

func (s *profileService) Cancel(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error) {
	return s.apply(sessionId, (*biostate.Profile).Cancel)
}

func (s *profileService) Reset(ctx context.Context, sessionId uuid.UUID) (*dto.ProfileSnapshotResponse, error) {
	return s.apply(sessionId, (*biostate.Profile).Reset)
}

func (s *profileService) Export(ctx context.Context, sessionId uuid.UUID) (string, error) {
	profile, err := s.session(sessionId)
	if err != nil {
		return "", err
	}
	return profile.ExportText()
}

func (s *profileService) Email(ctx context.Context, sessionId uuid.UUID, req *dto.EmailBioRequest) error {
	profile, err := s.session(sessionId)
	if err != nil {
		return err
	}
	text, err := profile.ExportText()
	if err != nil {
		return err
	}
	if s.mailer == nil {
		return mailer.ErrNotConfigured
	}

	donor := profile.Donor()
	if err := s.mailer.SendBio(req.To, donor.Name, text); err != nil {
		s.logger.Error("ProfileService", "Failed to email bio", map[string]interface{}{
			"donor_id": donor.ID,
			"error":    err,
		})
		return err
	}
	s.logger.Info("ProfileService", "Bio emailed", map[string]interface{}{"donor_id": donor.ID})
	return nil
}

func (s *profileService) HideCitation(ctx context.Context, sessionId uuid.UUID, req *dto.HideCitationRequest) (*dto.ProfileSnapshotResponse, error) {
	citation := biostate.Citation{Title: req.Title, URL: req.URL}
	return s.apply(sessionId, func(p *biostate.Profile) error {
		if err := p.HideCitation(ctx, citation, req.Permanent); err != nil {
			return fmt.Errorf("hide citation: %w", err)
		}
		return nil
	})
}

func (s *profileService) RestoreCitation(ctx context.Context, sessionId uuid.UUID, req *dto.RestoreCitationRequest) (*dto.ProfileSnapshotResponse, error) {
	return s.apply(sessionId, func(p *biostate.Profile) error {
		if err := p.RestoreCitation(ctx, req.URL, req.WasPermanent); err != nil {
			return fmt.Errorf("restore citation: %w", err)
		}
		return nil
	})
}

func (s *profileService) SubmitFeedback(ctx context.Context, sessionId uuid.UUID, req *dto.FeedbackRequest) (*dto.FeedbackResponse, error) {
	profile, err := s.session(sessionId)
	if err != nil {
		return nil, err
	}

	var record *biostate.FeedbackRecord
	switch biostate.FeedbackType(req.FeedbackType) {
	case biostate.FeedbackPositive:
		record, err = profile.SubmitPositive(ctx)
	case biostate.FeedbackNegative:
		record, err = profile.SubmitNegative(ctx, req.Comment)
	default:
		return nil, biostate.ErrInvalidFeedback
	}
	if err != nil {
		return nil, err
	}

	res := &dto.FeedbackResponse{FeedbackGiven: string(profile.FeedbackGiven())}
	if record == nil {
		if bio := profile.Snapshot().Bio; bio != nil {
			res.BioGenerated = bio.LastGenerated
		}
		return res, nil
	}

	res.Accepted = true
	res.RecordId = record.ID
	res.BioGenerated = record.BioGenerated

	s.publish(ctx, events.New(events.BioFeedbackSubmitted, map[string]interface{}{
		"session_id":    sessionId.String(),
		"donor_id":      record.DonorID,
		"record_id":     record.ID,
		"feedback_type": string(record.FeedbackType),
		"has_comment":   record.Comment != "",
	}))
	return res, nil
}

func (s *profileService) session(id uuid.UUID) (*biostate.Profile, error) {
	profile, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return profile, nil
}

func (s *profileService) apply(id uuid.UUID, op func(*biostate.Profile) error) (*dto.ProfileSnapshotResponse, error) {
	profile, err := s.session(id)
	if err != nil {
		return nil, err
	}
	if err := op(profile); err != nil {
		return nil, err
	}
	return toSnapshotResponse(id, profile.Snapshot()), nil
}

func (s *profileService) publish(ctx context.Context, evt events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("ProfileService", "Failed to publish event", map[string]interface{}{
			"event_type": evt.EventType(),
			"error":      err,
		})
	}
}

func toSnapshotResponse(id uuid.UUID, snap biostate.Snapshot) *dto.ProfileSnapshotResponse {
	res := &dto.ProfileSnapshotResponse{
		SessionId:        id,
		DonorId:          snap.DonorID,
		State:            string(snap.State),
		OriginalBioText:  nonNil(snap.OriginalText),
		EditedBioText:    nonNil(snap.EditedText),
		VisibleCitations: toCitationDTOs(snap.Visible),
		HiddenCitations:  make([]dto.HiddenCitationResponse, 0, len(snap.Hidden)),
		FeedbackGiven:    string(snap.FeedbackGiven),
		Error:            snap.Error,
	}
	for _, h := range snap.Hidden {
		res.HiddenCitations = append(res.HiddenCitations, dto.HiddenCitationResponse{
			Title:     h.Title,
			URL:       h.URL,
			Permanent: h.Permanent,
		})
	}

	if bio := snap.Bio; bio != nil {
		sources := make([]dto.SourceResponse, 0, len(bio.Sources))
		for _, src := range bio.Sources {
			sources = append(sources, dto.SourceResponse{Name: src.Name, URL: src.URL})
		}
		res.SmartBio = &dto.SmartBioResponse{
			Headlines:     nonNil(bio.Headlines),
			WealthSummary: bio.WealthSummary,
			Sources:       sources,
			Citations:     toCitationDTOs(bio.Citations),
			Confidence:    string(bio.Confidence),
			LastGenerated: bio.LastGenerated,
			Model:         bio.Model,
		}
	}
	return res
}

func toCitationDTOs(in []biostate.Citation) []dto.Citation {
	out := make([]dto.Citation, 0, len(in))
	for _, c := range in {
		out = append(out, dto.Citation{Title: c.Title, URL: c.URL})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
