package dto

import (
	"time"

	"github.com/google/uuid"
)

type MountProfileRequest struct {
	DonorId    string `json:"donor_id" validate:"notblank"`
	Name       string `json:"name" validate:"notblank"`
	Occupation string `json:"occupation"`
	Employer   string `json:"employer"`
	Location   string `json:"location"`
	Email      string `json:"email"`
	Industry   string `json:"industry"`
	WealthTier string `json:"wealth_tier"`
}

type SourceResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type SmartBioResponse struct {
	Headlines     []string         `json:"headlines"`
	WealthSummary string           `json:"wealth_summary"`
	Sources       []SourceResponse `json:"sources"`
	Citations     []Citation       `json:"citations"`
	Confidence    string           `json:"confidence"`
	LastGenerated time.Time        `json:"last_generated"`
	Model         string           `json:"model"`
}

type HiddenCitationResponse struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Permanent bool   `json:"permanent"`
}

type ProfileSnapshotResponse struct {
	SessionId        uuid.UUID                `json:"session_id"`
	DonorId          string                   `json:"donor_id"`
	State            string                   `json:"state"`
	SmartBio         *SmartBioResponse        `json:"smart_bio,omitempty"`
	OriginalBioText  []string                 `json:"original_bio_text"`
	EditedBioText    []string                 `json:"edited_bio_text"`
	VisibleCitations []Citation               `json:"visible_citations"`
	HiddenCitations  []HiddenCitationResponse `json:"hidden_citations"`
	FeedbackGiven    string                   `json:"feedback_given"`
	Error            string                   `json:"error,omitempty"`
}

// EditBioRequest replaces one sentence (Index + Text) or, when Sentences is
// set, the whole edit buffer.
type EditBioRequest struct {
	Index     *int     `json:"index"`
	Text      string   `json:"text"`
	Sentences []string `json:"sentences"`
}

type HideCitationRequest struct {
	Title     string `json:"title"`
	URL       string `json:"url" validate:"notblank"`
	Permanent bool   `json:"permanent"`
}

type RestoreCitationRequest struct {
	URL          string `json:"url" validate:"notblank"`
	WasPermanent bool   `json:"was_permanent"`
}

type FeedbackRequest struct {
	FeedbackType string `json:"feedback_type" validate:"required,oneof=positive negative"`
	Comment      string `json:"comment" validate:"max=2000"`
}

type FeedbackResponse struct {
	Accepted      bool      `json:"accepted"`
	RecordId      string    `json:"record_id,omitempty"`
	FeedbackGiven string    `json:"feedback_given"`
	BioGenerated  time.Time `json:"bio_generated"`
}

type EmailBioRequest struct {
	To string `json:"to" validate:"required,email"`
}
