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

package mcp

// In this file: check-in attendance tool definitions and handlers.

import (
	"context"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/easthillchurch/pcomcp/internal/checkins"
)

const invalidDateMsg = "Invalid date format. Use YYYY-MM-DD."

// noSession is the partial payload returned when the requested date has
// no check-in session.  It is a successful result, not a tool failure,
// even though it carries the "error" key.
type noSession struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

// ─── get_attendance_for_date ──────────────────────────────────────────────────

func (s *Server) toolGetAttendanceForDate() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_attendance_for_date",
		mcplib.WithDescription(`Get check-in attendance for a specific date, broken down by service time.

Returns the attendance per recognised service label and the grand total.
Per service, the figure is the highest headcount reported by any station,
so duplicate station reports never inflate the count.`),
		mcplib.WithString("date",
			mcplib.Description("The date to report, in YYYY-MM-DD format."),
			mcplib.Required(),
		),
		mcplib.WithString("event_id",
			mcplib.Description("Check-in event ID. Defaults to the main Sunday gathering."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetAttendanceForDate}
}

func (s *Server) handleGetAttendanceForDate(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	date, ok := stringArg(req, "date")
	if !ok || date == "" {
		return resultFailf("get_attendance_for_date: date is required"), nil
	}
	eventID, _ := stringArg(req, "event_id")

	report, err := s.chk.ServiceTotals(ctx, eventID, date)
	if err != nil {
		switch {
		case errors.Is(err, checkins.ErrInvalidDate):
			return resultFailf(invalidDateMsg), nil
		case errors.Is(err, checkins.ErrNoSession):
			// A date without a session is an answer, not a failure.
			return resultJSON(noSession{
				Date:  date,
				Error: fmt.Sprintf("No event_period (session) found for %s.", date),
			})
		}
		return resultFailf("Failed to get attendance for %s: %s", date, err), nil
	}
	return resultJSON(report)
}

// ─── get_attendance_details_for_date ──────────────────────────────────────────

func (s *Server) toolGetAttendanceDetailsForDate() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_attendance_details_for_date",
		mcplib.WithDescription(`Get the full check-in detail for a date: the event, the session
(event period), every service time with its individual headcounts, and
aggregated totals by service time, by attendance type, and overall.`),
		mcplib.WithString("date",
			mcplib.Description("The date to report, in YYYY-MM-DD format."),
			mcplib.Required(),
		),
		mcplib.WithString("event_id",
			mcplib.Description("Check-in event ID. Defaults to the main Sunday gathering."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetAttendanceDetailsForDate}
}

func (s *Server) handleGetAttendanceDetailsForDate(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	date, ok := stringArg(req, "date")
	if !ok || date == "" {
		return resultFailf("get_attendance_details_for_date: date is required"), nil
	}
	eventID, _ := stringArg(req, "event_id")

	details, err := s.chk.EventDetails(ctx, eventID, date)
	if err != nil {
		if errors.Is(err, checkins.ErrInvalidDate) {
			return resultFailf(invalidDateMsg), nil
		}
		return resultFailf("Failed to get attendance details for %s: %s", date, err), nil
	}
	return resultJSON(details)
}

// ─── list_event_times ─────────────────────────────────────────────────────────

func (s *Server) toolListEventTimes() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_event_times",
		mcplib.WithDescription("List all service times of a check-in event, across all sessions."),
		mcplib.WithString("event_id",
			mcplib.Description("Check-in event ID. Defaults to the main Sunday gathering."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListEventTimes}
}

func (s *Server) handleListEventTimes(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	eventID, _ := stringArg(req, "event_id")
	times, err := s.chk.ListEventTimes(ctx, eventID)
	if err != nil {
		return resultFailf("Failed to get event times for event: %s", err), nil
	}
	return resultJSON(times)
}
