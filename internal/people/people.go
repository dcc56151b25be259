// Package people reshapes Planning Center People resources into the flat
// records the agent tools return: person summaries, contact sub-resources
// and background checks.
package people

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/easthillchurch/pcomcp/internal/pco"
)

// Getter is the client surface the service needs.
type Getter interface {
	Get(ctx context.Context, url string, p *pco.Params) (*pco.Document, error)
	GetAll(ctx context.Context, url string, p *pco.Params) (*pco.Document, error)
}

// Service answers people-directory queries.
type Service struct {
	cl Getter
	lg *slog.Logger
}

// New creates the people service over the given client.  A nil logger
// falls back to slog.Default().
func New(cl Getter, lg *slog.Logger) *Service {
	if lg == nil {
		lg = slog.Default()
	}
	return &Service{cl: cl, lg: lg}
}

// Person is the flattened person record.
type Person struct {
	ID                      string `json:"id"`
	Name                    string `json:"name"`
	FirstName               string `json:"first_name"`
	LastName                string `json:"last_name"`
	Email                   string `json:"email,omitempty"`
	Age                     *int   `json:"age"`
	Gender                  string `json:"gender,omitempty"`
	Membership              string `json:"membership,omitempty"`
	BackgroundCheckApproved *bool  `json:"background_check_approved"`
	Birthdate               string `json:"birthdate,omitempty"`
	Anniversary             string `json:"anniversary,omitempty"`
	Status                  string `json:"status,omitempty"`
	MedicalNotes            string `json:"medical_notes,omitempty"`
	DirectoryStatus         string `json:"directory_status,omitempty"`
}

// flattenPerson reshapes a person resource into a Person.  Age is derived
// from the birthdate against the local clock; near a birthday the result
// can be off by one across timezone boundaries, which matches the upstream
// dashboard behaviour.
func flattenPerson(r pco.Resource) Person {
	p := Person{
		ID:              r.ID,
		Name:            r.StringAttr("name"),
		FirstName:       r.StringAttr("first_name"),
		LastName:        r.StringAttr("last_name"),
		Email:           r.StringAttr("login_identifier"),
		Gender:          r.StringAttr("gender"),
		Membership:      r.StringAttr("membership"),
		Birthdate:       r.StringAttr("birthdate"),
		Anniversary:     r.StringAttr("anniversary"),
		Status:          r.StringAttr("status"),
		MedicalNotes:    r.StringAttr("medical_notes"),
		DirectoryStatus: r.StringAttr("directory_status"),
	}
	if bd := p.Birthdate; bd != "" {
		if age, ok := ageAt(bd, time.Now()); ok {
			p.Age = &age
		}
	}
	if v, ok := r.Attributes["passed_background_check"].(bool); ok {
		p.BackgroundCheckApproved = &v
	}
	return p
}

// ageAt computes full years between the birthdate and now.  ok is false
// when the birthdate does not parse.
func ageAt(birthdate string, now time.Time) (int, bool) {
	bd, err := time.Parse("2006-01-02", birthdate)
	if err != nil {
		bd, err = time.Parse(time.RFC3339, birthdate)
		if err != nil {
			return 0, false
		}
	}
	age := now.Year() - bd.Year()
	if now.Month() < bd.Month() || (now.Month() == bd.Month() && now.Day() < bd.Day()) {
		age--
	}
	return age, true
}

// Search finds people by name or email.
func (s *Service) Search(ctx context.Context, query string) ([]Person, error) {
	p := pco.NewParams().Where("search_name_or_email", query)
	doc, err := s.cl.Get(ctx, pco.URL(pco.PeopleURL, "people"), p)
	if err != nil {
		return nil, err
	}
	out := make([]Person, 0, len(doc.Data))
	for _, r := range doc.Data {
		out = append(out, flattenPerson(r))
	}
	return out, nil
}

// Details fetches a single person.
func (s *Service) Details(ctx context.Context, id string) (*Person, error) {
	doc, err := s.cl.Get(ctx, pco.URL(pco.PeopleURL, "people", id), nil)
	if err != nil {
		return nil, err
	}
	r, ok := doc.First()
	if !ok {
		return nil, fmt.Errorf("person %s: empty response", id)
	}
	p := flattenPerson(r)
	return &p, nil
}

// PhoneNumber is a flattened phone number record.
type PhoneNumber struct {
	ID        string `json:"id"`
	Number    string `json:"number,omitempty"`
	Carrier   string `json:"carrier,omitempty"`
	Location  string `json:"location,omitempty"`
	Primary   bool   `json:"primary"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// PhoneNumbers lists a person's phone numbers.
func (s *Service) PhoneNumbers(ctx context.Context, personID string) ([]PhoneNumber, error) {
	doc, err := s.cl.Get(ctx, pco.URL(pco.PeopleURL, "people", personID, "phone_numbers"), nil)
	if err != nil {
		return nil, err
	}
	out := make([]PhoneNumber, 0, len(doc.Data))
	for _, r := range doc.Data {
		out = append(out, PhoneNumber{
			ID:        r.ID,
			Number:    r.StringAttr("number"),
			Carrier:   r.StringAttr("carrier"),
			Location:  r.StringAttr("location"),
			Primary:   r.BoolAttr("primary"),
			CreatedAt: r.StringAttr("created_at"),
			UpdatedAt: r.StringAttr("updated_at"),
		})
	}
	return out, nil
}

// Address is a flattened address record.  The backend has renamed the
// street/city/state fields over API revisions; both spellings are accepted.
type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Location  string `json:"location,omitempty"`
	Primary   bool   `json:"primary"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// Addresses lists a person's addresses.
func (s *Service) Addresses(ctx context.Context, personID string) ([]Address, error) {
	doc, err := s.cl.Get(ctx, pco.URL(pco.PeopleURL, "people", personID, "addresses"), nil)
	if err != nil {
		return nil, err
	}
	out := make([]Address, 0, len(doc.Data))
	for _, r := range doc.Data {
		out = append(out, Address{
			ID:        r.ID,
			Street:    coalesce(r.StringAttr("street_line_1"), r.StringAttr("street")),
			City:      coalesce(r.StringAttr("city"), r.StringAttr("locality")),
			State:     coalesce(r.StringAttr("state"), r.StringAttr("region")),
			Zip:       coalesce(r.StringAttr("zip"), r.StringAttr("postal_code")),
			Location:  r.StringAttr("location"),
			Primary:   r.BoolAttr("primary"),
			CreatedAt: r.StringAttr("created_at"),
			UpdatedAt: r.StringAttr("updated_at"),
		})
	}
	return out, nil
}

// Email is a flattened email address record.
type Email struct {
	ID        string `json:"id"`
	Address   string `json:"address,omitempty"`
	Location  string `json:"location,omitempty"`
	Primary   bool   `json:"primary"`
	Blocked   bool   `json:"blocked"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Emails lists a person's email addresses.
func (s *Service) Emails(ctx context.Context, personID string) ([]Email, error) {
	doc, err := s.cl.Get(ctx, pco.URL(pco.PeopleURL, "people", personID, "emails"), nil)
	if err != nil {
		return nil, err
	}
	out := make([]Email, 0, len(doc.Data))
	for _, r := range doc.Data {
		out = append(out, Email{
			ID:        r.ID,
			Address:   r.StringAttr("address"),
			Location:  r.StringAttr("location"),
			Primary:   r.BoolAttr("primary"),
			Blocked:   r.BoolAttr("blocked"),
			CreatedAt: r.StringAttr("created_at"),
			UpdatedAt: r.StringAttr("updated_at"),
		})
	}
	return out, nil
}
