package biostate

import (
	"context"
	"strings"
	"time"

	"crimson-crm-be/pkg/kvstore"

	"github.com/google/uuid"
)

type FeedbackType string

const (
	FeedbackPositive FeedbackType = "positive"
	FeedbackNegative FeedbackType = "negative"
)

// FeedbackRecord is one entry of the append-only feedback log.
type FeedbackRecord struct {
	ID           string       `json:"id"`
	DonorID      string       `json:"donorId"`
	Timestamp    time.Time    `json:"timestamp"`
	FeedbackType FeedbackType `json:"feedbackType"`
	Comment      string       `json:"comment,omitempty"`
	BioGenerated time.Time    `json:"bioGenerated"`
}

// feedbackTracker accepts one submission per generated bio.
type feedbackTracker struct {
	store   kvstore.Store
	donorID string
	given   FeedbackType // "" while unset
}

func (f *feedbackTracker) reset() {
	f.given = ""
}

// submit appends a record unless feedback was already given for this bio,
// in which case it returns nil without touching the log.
func (f *feedbackTracker) submit(ctx context.Context, typ FeedbackType, comment string, bioGenerated, now time.Time) (*FeedbackRecord, error) {
	if typ != FeedbackPositive && typ != FeedbackNegative {
		return nil, ErrInvalidFeedback
	}
	if f.given != "" {
		return nil, nil
	}

	record := FeedbackRecord{
		ID:           uuid.NewString(),
		DonorID:      f.donorID,
		Timestamp:    now,
		FeedbackType: typ,
		Comment:      strings.TrimSpace(comment),
		BioGenerated: bioGenerated,
	}
	if typ == FeedbackPositive {
		record.Comment = ""
	}

	err := f.store.Update(ctx, FeedbackLogKey, func(current []byte, found bool) ([]byte, error) {
		var records []FeedbackRecord
		if found {
			var err error
			if records, err = decodeFeedbackLog(current); err != nil {
				return nil, err
			}
		}
		return encodeFeedbackLog(append(records, record))
	})
	if err != nil {
		return nil, err
	}

	f.given = typ
	return &record, nil
}

// ReadFeedbackLog returns every stored feedback record, oldest first.
func ReadFeedbackLog(ctx context.Context, store kvstore.Store) ([]FeedbackRecord, error) {
	raw, found, err := store.Get(ctx, FeedbackLogKey)
	if err != nil || !found {
		return nil, err
	}
	return decodeFeedbackLog(raw)
}
