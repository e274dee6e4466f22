package biostate

import (
	"context"
	"testing"

	"crimson-crm-be/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedbackRequiresBio(t *testing.T) {
	p := mount(t, kvstore.NewMemoryStore(), &stubGenerator{bio: liveBio()}, nil)
	_, err := p.SubmitPositive(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveBio)
}

func TestFeedbackSingleSubmission(t *testing.T) {
	store := kvstore.NewMemoryStore()
	p := generated(t, store)
	ctx := context.Background()

	record, err := p.SubmitPositive(ctx)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, testDonor.ID, record.DonorID)
	assert.Equal(t, FeedbackPositive, record.FeedbackType)
	assert.Equal(t, fixedNow, record.BioGenerated)
	assert.NotEmpty(t, record.ID)

	again, err := p.SubmitNegative(ctx, "Wrong employer")
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Equal(t, FeedbackPositive, p.FeedbackGiven())

	records, err := ReadFeedbackLog(ctx, store)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestFeedbackResetsOnNewGeneration(t *testing.T) {
	store := kvstore.NewMemoryStore()
	p := generated(t, store)
	ctx := context.Background()

	_, err := p.SubmitPositive(ctx)
	require.NoError(t, err)

	_, err = p.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, FeedbackType(""), p.FeedbackGiven())

	record, err := p.SubmitNegative(ctx, "  Mixed up with another Jane Doe  ")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Mixed up with another Jane Doe", record.Comment)

	records, err := ReadFeedbackLog(ctx, store)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, FeedbackPositive, records[0].FeedbackType)
	assert.Equal(t, FeedbackNegative, records[1].FeedbackType)
}

func TestFeedbackLogIsSharedAndAppendOnly(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()

	a := generated(t, store)
	b := generated(t, store)
	_, err := a.SubmitPositive(ctx)
	require.NoError(t, err)
	_, err = b.SubmitNegative(ctx, "")
	require.NoError(t, err)

	records, err := ReadFeedbackLog(ctx, store)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	raw, _, _ := store.Get(ctx, FeedbackLogKey)
	assert.Contains(t, string(raw), `"version":1`)
}

func TestFeedbackRejectsUnknownType(t *testing.T) {
	p := generated(t, kvstore.NewMemoryStore())
	_, err := p.submitFeedback(context.Background(), FeedbackType("neutral"), "")
	assert.ErrorIs(t, err, ErrInvalidFeedback)
	assert.Equal(t, FeedbackType(""), p.FeedbackGiven())
}
