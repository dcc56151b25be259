package people

// In this file: background check queries and person enrichment.

import (
	"context"

	"github.com/easthillchurch/pcomcp/internal/pco"
)

// BackgroundCheckFilter narrows a background check listing.  Zero-value
// fields are omitted from the query.
type BackgroundCheckFilter struct {
	Status          string
	CompletedAfter  string // YYYY-MM-DD
	CompletedBefore string // YYYY-MM-DD
	IncludePerson   bool
}

// BackgroundCheck pairs the raw check resource with the flattened person,
// when person enrichment was requested and succeeded.
type BackgroundCheck struct {
	ID            string         `json:"id"`
	Attributes    map[string]any `json:"attributes"`
	PersonID      string         `json:"person_id,omitempty"`
	PersonDetails *Person        `json:"person_details,omitempty"`
}

// BackgroundChecks lists background checks matching the filter.  With
// IncludePerson set, each check is enriched with the person's flattened
// record; an enrichment failure leaves PersonDetails nil and the batch
// continues.
func (s *Service) BackgroundChecks(ctx context.Context, f BackgroundCheckFilter) ([]BackgroundCheck, error) {
	p := pco.NewParams()
	if f.Status != "" {
		p.Where("status", f.Status)
	}
	if f.CompletedAfter != "" {
		p.WhereOp("completed_at", "gte", f.CompletedAfter)
	}
	if f.CompletedBefore != "" {
		p.WhereOp("completed_at", "lt", f.CompletedBefore)
	}
	if f.IncludePerson {
		p.Include("person")
	}

	doc, err := s.cl.Get(ctx, pco.URL(pco.PeopleURL, "background_checks"), p)
	if err != nil {
		return nil, err
	}

	out := make([]BackgroundCheck, 0, len(doc.Data))
	for _, r := range doc.Data {
		bc := BackgroundCheck{ID: r.ID, Attributes: r.Attributes}
		if pid, ok := r.RelatedID("person"); ok {
			bc.PersonID = pid
			if f.IncludePerson {
				person, err := s.Details(ctx, pid)
				if err != nil {
					s.lg.WarnContext(ctx, "could not fetch person details for check",
						"check_id", r.ID, "person_id", pid, "error", err)
				} else {
					bc.PersonDetails = person
				}
			}
		}
		out = append(out, bc)
	}
	return out, nil
}

// ApprovedPeople lists the flattened records of everyone with an approved
// background check.  A person that cannot be fetched is skipped, the rest
// of the batch survives.
func (s *Service) ApprovedPeople(ctx context.Context) ([]Person, error) {
	checks, err := s.BackgroundChecks(ctx, BackgroundCheckFilter{Status: "approved", IncludePerson: true})
	if err != nil {
		return nil, err
	}
	out := make([]Person, 0, len(checks))
	for _, bc := range checks {
		if bc.PersonDetails != nil {
			out = append(out, *bc.PersonDetails)
		}
	}
	return out, nil
}
