package biostate

import (
	"context"
	"strings"

	"crimson-crm-be/pkg/kvstore"
)

// HiddenCitation is a citation removed from the visible list.
type HiddenCitation struct {
	Citation
	Permanent bool
}

// CitationVisibility partitions the citations of the current bio into visible,
// session-hidden and permanently hidden. The permanent set is persisted per donor
// and always wins over session state.
type CitationVisibility struct {
	store     kvstore.Store
	donorID   string
	citations []Citation
	session   map[string]struct{}
	permanent map[string]struct{}
}

func newCitationVisibility(store kvstore.Store, donorID string) *CitationVisibility {
	return &CitationVisibility{
		store:     store,
		donorID:   donorID,
		session:   make(map[string]struct{}),
		permanent: make(map[string]struct{}),
	}
}

// load reads the persisted permanent set; it is the source of truth from here on.
func (c *CitationVisibility) load(ctx context.Context) error {
	raw, found, err := c.store.Get(ctx, HiddenCitationsKey(c.donorID))
	if err != nil {
		return err
	}
	if !found {
		return nil
	}
	urls, err := decodeHiddenURLs(raw)
	if err != nil {
		return err
	}
	c.permanent = toSet(urls)
	return nil
}

func (c *CitationVisibility) setCitations(citations []Citation) {
	c.citations = append([]Citation(nil), citations...)
}

func (c *CitationVisibility) hide(ctx context.Context, citation Citation, permanent bool) error {
	url := strings.TrimSpace(citation.URL)
	if url == "" {
		return ErrInvalidCitation
	}
	if !permanent {
		c.session[url] = struct{}{}
		return nil
	}
	return c.updatePermanent(ctx, func(urls []string) []string {
		for _, u := range urls {
			if u == url {
				return urls
			}
		}
		return append(urls, url)
	})
}

func (c *CitationVisibility) restore(ctx context.Context, url string, wasPermanent bool) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrInvalidCitation
	}
	if !wasPermanent {
		delete(c.session, url)
		return nil
	}
	return c.updatePermanent(ctx, func(urls []string) []string {
		kept := urls[:0]
		for _, u := range urls {
			if u != url {
				kept = append(kept, u)
			}
		}
		return kept
	})
}

// updatePermanent rewrites the persisted set atomically and adopts the stored result,
// which may include URLs hidden by other writers in the meantime.
func (c *CitationVisibility) updatePermanent(ctx context.Context, change func([]string) []string) error {
	var stored []string
	err := c.store.Update(ctx, HiddenCitationsKey(c.donorID), func(current []byte, found bool) ([]byte, error) {
		var urls []string
		if found {
			var err error
			if urls, err = decodeHiddenURLs(current); err != nil {
				return nil, err
			}
		}
		stored = change(urls)
		return encodeHiddenURLs(stored)
	})
	if err != nil {
		return err
	}
	c.permanent = toSet(stored)
	return nil
}

func (c *CitationVisibility) isPermanent(url string) bool {
	_, ok := c.permanent[url]
	return ok
}

func (c *CitationVisibility) isHidden(url string) bool {
	if c.isPermanent(url) {
		return true
	}
	_, ok := c.session[url]
	return ok
}

func (c *CitationVisibility) visible() []Citation {
	out := make([]Citation, 0, len(c.citations))
	for _, cit := range c.citations {
		if !c.isHidden(cit.URL) {
			out = append(out, cit)
		}
	}
	return out
}

func (c *CitationVisibility) hidden() []HiddenCitation {
	out := make([]HiddenCitation, 0)
	for _, cit := range c.citations {
		if c.isHidden(cit.URL) {
			out = append(out, HiddenCitation{Citation: cit, Permanent: c.isPermanent(cit.URL)})
		}
	}
	return out
}

func toSet(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}
