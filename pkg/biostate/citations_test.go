package biostate

import (
	"context"
	"testing"

	"crimson-crm-be/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generated(t *testing.T, store kvstore.Store) *Profile {
	t.Helper()
	p := mount(t, store, &stubGenerator{bio: liveBio()}, nil)
	_, err := p.Generate(context.Background())
	require.NoError(t, err)
	return p
}

func storedURLs(t *testing.T, store kvstore.Store, donorID string) []string {
	t.Helper()
	raw, found, err := store.Get(context.Background(), HiddenCitationsKey(donorID))
	require.NoError(t, err)
	if !found {
		return nil
	}
	urls, err := decodeHiddenURLs(raw)
	require.NoError(t, err)
	return urls
}

func TestSessionHideAndRestore(t *testing.T) {
	store := kvstore.NewMemoryStore()
	p := generated(t, store)
	ctx := context.Background()

	require.NoError(t, p.HideCitation(ctx, sec, false))
	assert.Equal(t, []Citation{forbes, bloomberg}, p.VisibleCitations())
	assert.Equal(t, []HiddenCitation{{Citation: sec, Permanent: false}}, p.HiddenCitations())
	assert.Empty(t, storedURLs(t, store, testDonor.ID))

	require.NoError(t, p.RestoreCitation(ctx, sec.URL, false))
	assert.Equal(t, []Citation{forbes, sec, bloomberg}, p.VisibleCitations())
	assert.Empty(t, p.HiddenCitations())
}

func TestPermanentHideRestoreRoundTrip(t *testing.T) {
	store := kvstore.NewMemoryStore()
	p := generated(t, store)
	ctx := context.Background()
	before := p.VisibleCitations()

	require.NoError(t, p.HideCitation(ctx, forbes, true))
	assert.NotContains(t, p.VisibleCitations(), forbes)
	assert.Equal(t, []string{forbes.URL}, storedURLs(t, store, testDonor.ID))

	require.NoError(t, p.RestoreCitation(ctx, forbes.URL, true))
	assert.Equal(t, before, p.VisibleCitations())
	assert.NotContains(t, storedURLs(t, store, testDonor.ID), forbes.URL)
}

func TestPermanentHideSurvivesRemount(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()

	first := generated(t, store)
	require.NoError(t, first.HideCitation(ctx, bloomberg, true))
	require.NoError(t, first.HideCitation(ctx, sec, false))

	// fresh page load: session state is gone, the permanent set is re-hydrated
	second := generated(t, store)
	visible := second.VisibleCitations()
	assert.NotContains(t, visible, bloomberg)
	assert.Contains(t, visible, sec)
	assert.Equal(t, []HiddenCitation{{Citation: bloomberg, Permanent: true}}, second.HiddenCitations())
}

func TestPermanentWinsOverSession(t *testing.T) {
	p := generated(t, kvstore.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, p.HideCitation(ctx, forbes, false))
	require.NoError(t, p.HideCitation(ctx, forbes, true))
	assert.Equal(t, []HiddenCitation{{Citation: forbes, Permanent: true}}, p.HiddenCitations())

	// clearing the session entry alone does not reveal it
	require.NoError(t, p.RestoreCitation(ctx, forbes.URL, false))
	assert.NotContains(t, p.VisibleCitations(), forbes)
}

func TestHideIsIdempotentAndSharedAcrossViews(t *testing.T) {
	store := kvstore.NewMemoryStore()
	ctx := context.Background()

	a := generated(t, store)
	b := generated(t, store)

	require.NoError(t, a.HideCitation(ctx, forbes, true))
	require.NoError(t, a.HideCitation(ctx, forbes, true))
	require.NoError(t, b.HideCitation(ctx, sec, true))

	// b adopted a's write when it rewrote the set
	assert.ElementsMatch(t, []string{forbes.URL, sec.URL}, storedURLs(t, store, testDonor.ID))
	assert.Equal(t, []Citation{bloomberg}, b.VisibleCitations())
}

func TestHideRequiresURL(t *testing.T) {
	p := generated(t, kvstore.NewMemoryStore())
	assert.ErrorIs(t, p.HideCitation(context.Background(), Citation{Title: "x"}, true), ErrInvalidCitation)
	assert.ErrorIs(t, p.RestoreCitation(context.Background(), " ", false), ErrInvalidCitation)
}

func TestMountReadsLegacyArray(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), HiddenCitationsKey(testDonor.ID), []byte(`["`+sec.URL+`"]`)))

	p := generated(t, store)
	assert.NotContains(t, p.VisibleCitations(), sec)

	// the next write upgrades the document to the versioned form
	require.NoError(t, p.HideCitation(context.Background(), forbes, true))
	raw, _, _ := store.Get(context.Background(), HiddenCitationsKey(testDonor.ID))
	assert.JSONEq(t, `{"version":1,"urls":["`+sec.URL+`","`+forbes.URL+`"]}`, string(raw))
}

func TestMountFailsOnCorruptState(t *testing.T) {
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), HiddenCitationsKey(testDonor.ID), []byte(`{"version":1,"urls":`)))

	_, err := MountProfile(context.Background(), testDonor, store, &stubGenerator{}, nil)
	assert.Error(t, err)
}
