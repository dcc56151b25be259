// Copyright (c) 2025-2026 East Hill Church Tech Team.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package checkins implements the attendance aggregation pipeline on top
// of the Planning Center Check-Ins API: resolving the event period
// (session) for a calendar date, collecting its event times together with
// the included headcounts and attendance types, and folding those into
// per-service and per-type totals.
package checkins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/easthillchurch/pcomcp/internal/pco"
)

// DefaultEventID is the recurring check-in event the Sunday totals are
// reported for.
const DefaultEventID = "701347"

// DefaultServiceNames is the recognised roster of service labels, in
// report order.
var DefaultServiceNames = []string{
	"EH 10:15am",
	"EH 12:15pm",
	"EH 8:15am",
	"EW 11:00am",
	"EW 9:00am",
}

// ErrNoSession indicates that no event period exists for the requested
// date.  It is a normal outcome, not a failure: callers render it as a
// "no session for this date" result rather than an error.
var ErrNoSession = errors.New("no session for this date")

// ErrInvalidDate indicates a malformed date argument.
var ErrInvalidDate = errors.New("invalid date format, want YYYY-MM-DD")

const (
	dateLayout = "2006-01-02"

	// perPage caps collection page sizes; session-per-day cardinality is
	// low, so the session query never needs a second page.
	perPage = 100
)

// Getter is the client surface the service needs.
type Getter interface {
	Get(ctx context.Context, url string, p *pco.Params) (*pco.Document, error)
	GetAll(ctx context.Context, url string, p *pco.Params) (*pco.Document, error)
}

// Service answers attendance queries for one check-in event.
type Service struct {
	cl           Getter
	eventID      string
	serviceNames []string
	lg           *slog.Logger
}

// Option is the Service constructor option.
type Option func(*Service)

// WithEventID overrides the default event.
func WithEventID(id string) Option {
	return func(s *Service) {
		if id != "" {
			s.eventID = id
		}
	}
}

// WithServiceNames overrides the recognised service roster.
func WithServiceNames(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.serviceNames = names
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(lg *slog.Logger) Option {
	return func(s *Service) {
		if lg != nil {
			s.lg = lg
		}
	}
}

// New creates the check-ins service over the given client.
func New(cl Getter, opt ...Option) *Service {
	s := &Service{
		cl:           cl,
		eventID:      DefaultEventID,
		serviceNames: DefaultServiceNames,
		lg:           slog.Default(),
	}
	for _, o := range opt {
		o(s)
	}
	return s
}

func (s *Service) event(eventID string) string {
	if eventID == "" {
		return s.eventID
	}
	return eventID
}

func parseDay(day string) (time.Time, error) {
	t, err := time.Parse(dateLayout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, day)
	}
	return t, nil
}

// ResolveSession finds the event period for the given day using the
// half-open range [day 00:00, day+1 00:00).  Several periods may overlap a
// day; the first by ascending start is selected, which is a deliberate
// tie-break, not an accident of ordering.  Returns ErrNoSession when the
// day has no period.
func (s *Service) ResolveSession(ctx context.Context, eventID, day string) (pco.Resource, error) {
	start, err := parseDay(day)
	if err != nil {
		return pco.Resource{}, err
	}
	end := start.AddDate(0, 0, 1)

	p := pco.NewParams().
		WhereOp("starts_at", "gte", start.Format(dateLayout)).
		WhereOp("starts_at", "lt", end.Format(dateLayout)).
		Order("starts_at").
		PerPage(perPage)

	eventID = s.event(eventID)
	doc, err := s.cl.Get(ctx, pco.URL(pco.CheckinsURL, "events", eventID, "event_periods"), p)
	if err != nil {
		return pco.Resource{}, fmt.Errorf("resolve session: %w", err)
	}
	if len(doc.Data) == 0 {
		return pco.Resource{}, ErrNoSession
	}
	s.lg.DebugContext(ctx, "session resolved",
		"event_id", eventID, "date", day, "period_id", doc.Data[0].ID, "candidates", len(doc.Data))
	return doc.Data[0], nil
}

// eventTimes fetches all event times of a period together with the
// included headcounts and their attendance types, across all pages.
func (s *Service) eventTimes(ctx context.Context, eventID, periodID string) (*pco.Document, error) {
	p := pco.NewParams().
		PerPage(perPage).
		Include("headcounts", "headcounts.attendance_type")
	u := pco.URL(pco.CheckinsURL, "events", eventID, "event_periods", periodID, "event_times")
	return s.cl.GetAll(ctx, u, p)
}

// ServiceReport is the summary attendance shape for one date.
type ServiceReport struct {
	Date       string         `json:"date"`
	Services   []ServiceTotal `json:"services"`
	GrandTotal int            `json:"grand_total"`
}

// ServiceTotals reports, per recognised service label, the attendance for
// the session on the given date, and the grand total across services.
// Returns ErrNoSession unmodified so callers can render the partial
// "no session" result.
func (s *Service) ServiceTotals(ctx context.Context, eventID, date string) (*ServiceReport, error) {
	eventID = s.event(eventID)
	period, err := s.ResolveSession(ctx, eventID, date)
	if err != nil {
		return nil, err
	}
	doc, err := s.eventTimes(ctx, eventID, period.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch event times: %w", err)
	}
	_, hcs := indexIncluded(doc.Included)
	services, grand := maxByService(s.serviceNames, hcs)
	return &ServiceReport{Date: date, Services: services, GrandTotal: grand}, nil
}

// EventTime is one service time slot with its headcounts attached.
type EventTime struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes"`
	Headcounts []Headcount    `json:"headcounts"`
}

// Details is the full-detail attendance shape for one date.
type Details struct {
	Event       *pco.Resource `json:"event,omitempty"`
	Date        string        `json:"date"`
	EventPeriod *pco.Resource `json:"event_period,omitempty"`
	EventTimes  []EventTime   `json:"event_times,omitempty"`
	Totals      *Totals       `json:"totals,omitempty"`
	// NotFound carries the user-facing explanation when the date has no
	// session.  It shares the "error" key with the failure shape so agent
	// callers handle both uniformly, but a Details carrying it is a
	// successful partial result.
	NotFound string `json:"error,omitempty"`
}

// EventDetails returns the event, the session for the date, every service
// time with its headcounts, and the aggregated totals.  When the date has
// no session the result carries only the event, the date and the NotFound
// explanation; no aggregation runs.
func (s *Service) EventDetails(ctx context.Context, eventID, date string) (*Details, error) {
	if _, err := parseDay(date); err != nil {
		return nil, err
	}
	eventID = s.event(eventID)

	eventDoc, err := s.cl.Get(ctx, pco.URL(pco.CheckinsURL, "events", eventID), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch event: %w", err)
	}
	out := &Details{Date: date}
	if event, ok := eventDoc.First(); ok {
		out.Event = &event
	}

	period, err := s.ResolveSession(ctx, eventID, date)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			out.NotFound = fmt.Sprintf("No event_period (session) found for %s.", date)
			return out, nil
		}
		return nil, err
	}
	out.EventPeriod = &period

	doc, err := s.eventTimes(ctx, eventID, period.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch event times: %w", err)
	}
	typeNames, hcs := indexIncluded(doc.Included)

	byTime := make(map[string][]Headcount)
	for _, hc := range hcs {
		if hc.EventTimeID != "" {
			byTime[hc.EventTimeID] = append(byTime[hc.EventTimeID], hc)
		}
	}
	out.EventTimes = make([]EventTime, 0, len(doc.Data))
	for _, et := range doc.Data {
		attached := byTime[et.ID]
		if attached == nil {
			attached = []Headcount{}
		}
		out.EventTimes = append(out.EventTimes, EventTime{
			ID:         et.ID,
			Attributes: et.Attributes,
			Headcounts: attached,
		})
	}

	totals := aggregate(doc.Data, hcs, typeNames)
	out.Totals = &totals
	return out, nil
}

// ListEventTimes lists all event times of an event, unscoped by period.
func (s *Service) ListEventTimes(ctx context.Context, eventID string) ([]pco.Resource, error) {
	p := pco.NewParams().Where("event_id", s.event(eventID))
	doc, err := s.cl.GetAll(ctx, pco.URL(pco.CheckinsURL, "event_times"), p)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}
