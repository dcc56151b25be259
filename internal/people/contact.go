package people

// In this file: contact-info enrichment fan-out.

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// maxInflight caps concurrent sub-resource fetches so that enrichment
// fan-out alone cannot exhaust the shared request budget within one window.
const maxInflight = 4

// searchLimit caps how many search hits get enriched.
const searchLimit = 5

// errEntry is the inline slot error written in place of a sub-resource
// list when its fetch fails.  Other slots are unaffected: one bad
// sub-resource must not abort the whole record.
type errEntry struct {
	Error string `json:"error"`
}

// ContactInfo is a person together with their contact sub-resources.  The
// slot fields hold either the fetched list or a single inline
// {"error": ...} entry when that particular fetch failed.
type ContactInfo struct {
	Person
	PhoneNumbers any `json:"phone_numbers,omitempty"`
	Addresses    any `json:"addresses,omitempty"`
	Emails       any `json:"emails,omitempty"`
}

// ContactInfo fetches a person with all three contact sub-resources.  The
// sub-fetches run concurrently; each failure is recorded inline in its
// slot while the others succeed.
func (s *Service) ContactInfo(ctx context.Context, personID string) (*ContactInfo, error) {
	p, err := s.Details(ctx, personID)
	if err != nil {
		return nil, err
	}
	ci := &ContactInfo{Person: *p}
	s.fillContactSlots(ctx, personID, ci, true, true, true)
	return ci, nil
}

// fillContactSlots populates the requested slots of ci concurrently.  Each
// goroutine writes a distinct field, so no locking is needed; errors stay
// inline and never cancel the sibling fetches.
func (s *Service) fillContactSlots(ctx context.Context, personID string, ci *ContactInfo, phone, addr, email bool) {
	var g errgroup.Group
	g.SetLimit(maxInflight)
	if phone {
		g.Go(func() error {
			if pn, err := s.PhoneNumbers(ctx, personID); err != nil {
				ci.PhoneNumbers = []errEntry{{Error: fmt.Sprintf("Failed to get phone numbers: %s", err)}}
			} else {
				ci.PhoneNumbers = pn
			}
			return nil
		})
	}
	if addr {
		g.Go(func() error {
			if aa, err := s.Addresses(ctx, personID); err != nil {
				ci.Addresses = []errEntry{{Error: fmt.Sprintf("Failed to get addresses: %s", err)}}
			} else {
				ci.Addresses = aa
			}
			return nil
		})
	}
	if email {
		g.Go(func() error {
			if ee, err := s.Emails(ctx, personID); err != nil {
				ci.Emails = []errEntry{{Error: fmt.Sprintf("Failed to get emails: %s", err)}}
			} else {
				ci.Emails = ee
			}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors, failures are inline
}

// SearchWithContactInfo searches for people and enriches up to five hits
// with the requested contact sub-resources.  Enrichment concurrency is
// bounded; a failed slot is recorded inline in that person's record.
func (s *Service) SearchWithContactInfo(ctx context.Context, query string, phone, addr, email bool) ([]*ContactInfo, error) {
	found, err := s.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(found) > searchLimit {
		found = found[:searchLimit]
	}

	out := make([]*ContactInfo, len(found))
	var g errgroup.Group
	g.SetLimit(maxInflight)
	for i, p := range found {
		out[i] = &ContactInfo{Person: p}
		g.Go(func() error {
			s.fillContactSlots(ctx, p.ID, out[i], phone, addr, email)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}
