package biostate

import "errors"

var (
	ErrNoActiveBio      = errors.New("no bio has been generated")
	ErrNotEditing       = errors.New("bio is not being edited")
	ErrUnsavedEdits     = errors.New("bio has unsaved edits")
	ErrGenerating       = errors.New("bio generation is in progress")
	ErrSentenceIndex    = errors.New("sentence index out of range")
	ErrEmptyBio         = errors.New("bio must keep at least one sentence")
	ErrInvalidCitation  = errors.New("citation url is required")
	ErrStaleGeneration  = errors.New("generation superseded by a newer request")
	ErrGenerationFailed = errors.New("bio generation failed")
	ErrInvalidFeedback  = errors.New("feedback type must be positive or negative")
)
