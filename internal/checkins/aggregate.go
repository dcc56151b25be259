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

package checkins

// In this file: compound-document indexing and the aggregation folds.
// Everything here is pure, no I/O.

import "github.com/easthillchurch/pcomcp/internal/pco"

// Headcount is a flattened headcount record from a compound document.
type Headcount struct {
	ID               string `json:"id"`
	Total            int    `json:"total"`
	EventTimeID      string `json:"event_time_id,omitempty"`
	AttendanceTypeID string `json:"attendance_type_id,omitempty"`
	AttendanceType   string `json:"attendance_type_name,omitempty"`
}

// indexIncluded partitions the included array of a compound document into
// the attendance-type name lookup and the flat list of headcounts.  A
// headcount with a missing relationship keeps an empty id; a missing or
// null total is 0.  Neither is an error.
func indexIncluded(included []pco.Resource) (typeNames map[string]string, hcs []Headcount) {
	typeNames = make(map[string]string)
	for _, r := range included {
		if r.Type == "AttendanceType" {
			typeNames[r.ID] = r.StringAttr("name")
		}
	}
	for _, r := range included {
		if r.Type != "Headcount" {
			continue
		}
		hc := Headcount{ID: r.ID, Total: r.IntAttr("total")}
		if id, ok := r.RelatedID("event_time"); ok {
			hc.EventTimeID = id
		}
		if id, ok := r.RelatedID("attendance_type"); ok {
			hc.AttendanceTypeID = id
			hc.AttendanceType = typeNames[id]
		}
		hcs = append(hcs, hc)
	}
	return typeNames, hcs
}

// ServiceTimeTotal is the per-slot total of the full-detail report.
type ServiceTimeTotal struct {
	EventTimeID string `json:"event_time_id"`
	StartsAt    string `json:"starts_at"`
	Total       int    `json:"total"`
}

// AttendanceTypeTotal is the per-type total of the full-detail report.
// An empty AttendanceTypeID with an empty Name is the "unknown" bucket for
// headcounts that carry no attendance_type relationship.
type AttendanceTypeTotal struct {
	AttendanceTypeID string `json:"attendance_type_id"`
	Name             string `json:"name"`
	Total            int    `json:"total"`
}

// Totals is the aggregation of one session's headcounts, partitioned two
// ways.  Both partitions are derived from the same headcount set, so their
// sums equal Total.
type Totals struct {
	ByServiceTime    []ServiceTimeTotal    `json:"by_service_time"`
	ByAttendanceType []AttendanceTypeTotal `json:"by_attendance_type"`
	Total            int                   `json:"TOTAL ATTENDANCE"`
}

// aggregate folds headcounts into per-service-time totals (event-time
// input order preserved, 0 when a slot has no headcounts), per
// attendance-type totals (first-seen grouping order), and the grand total.
func aggregate(eventTimes []pco.Resource, hcs []Headcount, typeNames map[string]string) Totals {
	var t Totals

	byTime := make(map[string]int)
	for _, hc := range hcs {
		byTime[hc.EventTimeID] += hc.Total
		t.Total += hc.Total
	}
	t.ByServiceTime = make([]ServiceTimeTotal, 0, len(eventTimes))
	for _, et := range eventTimes {
		t.ByServiceTime = append(t.ByServiceTime, ServiceTimeTotal{
			EventTimeID: et.ID,
			StartsAt:    et.StringAttr("starts_at"),
			Total:       byTime[et.ID],
		})
	}

	byType := make(map[string]int)
	var order []string
	for _, hc := range hcs {
		if _, seen := byType[hc.AttendanceTypeID]; !seen {
			order = append(order, hc.AttendanceTypeID)
		}
		byType[hc.AttendanceTypeID] += hc.Total
	}
	t.ByAttendanceType = make([]AttendanceTypeTotal, 0, len(order))
	for _, id := range order {
		t.ByAttendanceType = append(t.ByAttendanceType, AttendanceTypeTotal{
			AttendanceTypeID: id,
			Name:             typeNames[id], // "" for the unknown bucket
			Total:            byType[id],
		})
	}
	return t
}

// ServiceTotal is one roster entry of the summary report.
type ServiceTotal struct {
	ServiceName string `json:"service_name"`
	Total       int    `json:"total"`
}

// maxByService reports, for each recognised service label, the MAXIMUM
// headcount total whose attendance-type name equals the label.  Duplicate
// competing rows for the same service occur in the wild (multiple check-in
// stations reporting the same service); taking the max instead of the sum
// avoids double counting them.  A service with no headcounts reports 0.
// Output preserves roster order, not discovery order.
func maxByService(names []string, hcs []Headcount) ([]ServiceTotal, int) {
	services := make([]ServiceTotal, 0, len(names))
	grand := 0
	for _, name := range names {
		maxTotal := 0
		for _, hc := range hcs {
			if hc.AttendanceType == name && hc.Total > maxTotal {
				maxTotal = hc.Total
			}
		}
		services = append(services, ServiceTotal{ServiceName: name, Total: maxTotal})
		grand += maxTotal
	}
	return services, grand
}
