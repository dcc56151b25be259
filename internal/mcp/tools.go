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

// In this file: people directory tool definitions and handlers.

import (
	"context"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/easthillchurch/pcomcp/internal/pco"
	"github.com/easthillchurch/pcomcp/internal/people"
)

// ─── search_people ────────────────────────────────────────────────────────────

func (s *Server) toolSearchPeople() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_people",
		mcplib.WithDescription("Search for people by name, email, or other identifying information. Returns flattened person records."),
		mcplib.WithString("query",
			mcplib.Description("Search query string (name or email)."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchPeople}
}

func (s *Server) handleSearchPeople(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, ok := stringArg(req, "query")
	if !ok || query == "" {
		return resultFailf("search_people: query is required"), nil
	}
	found, err := s.people.Search(ctx, query)
	if err != nil {
		return resultFailf("Failed to search people: %s", err), nil
	}
	return resultJSON(found)
}

// ─── get_person_details ───────────────────────────────────────────────────────

func (s *Server) toolGetPersonDetails() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_person_details",
		mcplib.WithDescription("Get detailed information about a specific person: name, age, membership, background check status and more."),
		mcplib.WithString("person_id",
			mcplib.Description("The Planning Center person ID."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetPersonDetails}
}

func (s *Server) handleGetPersonDetails(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	personID, ok := stringArg(req, "person_id")
	if !ok || personID == "" {
		return resultFailf("get_person_details: person_id is required"), nil
	}
	p, err := s.people.Details(ctx, personID)
	if err != nil {
		return resultFailf("Failed to get person details: %s", err), nil
	}
	return resultJSON(p)
}

// ─── get_person_contact_info ──────────────────────────────────────────────────

func (s *Server) toolGetPersonContactInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_person_contact_info",
		mcplib.WithDescription(`Get complete contact information for a person: phone numbers, addresses and email addresses.

A failure fetching one kind of contact record does not fail the call: the
affected list holds a single {"error": ...} entry and the others are
returned normally.`),
		mcplib.WithString("person_id",
			mcplib.Description("The Planning Center person ID."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetPersonContactInfo}
}

func (s *Server) handleGetPersonContactInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	personID, ok := stringArg(req, "person_id")
	if !ok || personID == "" {
		return resultFailf("get_person_contact_info: person_id is required"), nil
	}
	ci, err := s.people.ContactInfo(ctx, personID)
	if err != nil {
		return resultFailf("Failed to get person details: %s", err), nil
	}
	return resultJSON(ci)
}

// ─── search_people_with_contact_info ──────────────────────────────────────────

func (s *Server) toolSearchPeopleWithContactInfo() mcpsrv.ServerTool {
	tool := mcplib.NewTool("search_people_with_contact_info",
		mcplib.WithDescription("Search for people and enrich up to 5 results with the requested contact information."),
		mcplib.WithString("query",
			mcplib.Description("Search query string (name or email)."),
			mcplib.Required(),
		),
		mcplib.WithBoolean("include_phone",
			mcplib.Description("Include phone numbers (default: true)."),
		),
		mcplib.WithBoolean("include_address",
			mcplib.Description("Include addresses (default: false)."),
		),
		mcplib.WithBoolean("include_email",
			mcplib.Description("Include email addresses (default: false)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleSearchPeopleWithContactInfo}
}

func (s *Server) handleSearchPeopleWithContactInfo(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, ok := stringArg(req, "query")
	if !ok || query == "" {
		return resultFailf("search_people_with_contact_info: query is required"), nil
	}
	phone := boolArg(req, "include_phone", true)
	addr := boolArg(req, "include_address", false)
	email := boolArg(req, "include_email", false)

	found, err := s.people.SearchWithContactInfo(ctx, query, phone, addr, email)
	if err != nil {
		return resultFailf("Failed to search people: %s", err), nil
	}
	return resultJSON(found)
}

// ─── list_people_with_approved_background_checks ──────────────────────────────

func (s *Server) toolListApprovedBackgroundChecks() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_people_with_approved_background_checks",
		mcplib.WithDescription("List all people with approved background checks, including their basic information."),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListApprovedBackgroundChecks}
}

func (s *Server) handleListApprovedBackgroundChecks(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	found, err := s.people.ApprovedPeople(ctx)
	if err != nil {
		return resultFailf("Failed to get people with approved background checks: %s", err), nil
	}
	return resultJSON(found)
}

// ─── list_background_checks ───────────────────────────────────────────────────

func (s *Server) toolListBackgroundChecks() mcpsrv.ServerTool {
	tool := mcplib.NewTool("list_background_checks",
		mcplib.WithDescription(`List background checks with flexible filtering options.

Examples:
- all approved checks: status="approved"
- checks completed in the last year: completed_after="2024-09-01"`),
		mcplib.WithString("status",
			mcplib.Description(`Filter by status (e.g. "approved", "pending", "denied", "expired").`),
		),
		mcplib.WithString("completed_after",
			mcplib.Description("Only checks completed after this date (YYYY-MM-DD)."),
		),
		mcplib.WithString("completed_before",
			mcplib.Description("Only checks completed before this date (YYYY-MM-DD)."),
		),
		mcplib.WithBoolean("include_person_details",
			mcplib.Description("Enrich each check with the person's record (default: true)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleListBackgroundChecks}
}

func (s *Server) handleListBackgroundChecks(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	f := people.BackgroundCheckFilter{
		IncludePerson: boolArg(req, "include_person_details", true),
	}
	f.Status, _ = stringArg(req, "status")
	f.CompletedAfter, _ = stringArg(req, "completed_after")
	f.CompletedBefore, _ = stringArg(req, "completed_before")

	checks, err := s.people.BackgroundChecks(ctx, f)
	if err != nil {
		return resultFailf("Failed to get background checks: %s", err), nil
	}
	return resultJSON(checks)
}

// ─── query_resource ───────────────────────────────────────────────────────────

func (s *Server) toolQueryResource() mcpsrv.ServerTool {
	tool := mcplib.NewTool("query_resource",
		mcplib.WithDescription(`Run a generic filtered query against a People or Check-Ins resource.

The path is relative to the application base, e.g. "people" or
"events/701347/event_periods".  Filters use the backend's where
convention: a plain string value is an equality filter, an object value
maps operators to values, e.g. {"starts_at": {"gte": "2025-09-21"}}.
All pages are fetched and concatenated.`),
		mcplib.WithString("app",
			mcplib.Description(`Which application to query: "people" (default) or "check-ins".`),
		),
		mcplib.WithString("path",
			mcplib.Description("Resource path relative to the application base."),
			mcplib.Required(),
		),
		mcplib.WithObject("where",
			mcplib.Description("Filter map: field to value, or field to {operator: value}."),
		),
		mcplib.WithString("include",
			mcplib.Description(`Comma-separated relationship paths to side-load, e.g. "headcounts,headcounts.attendance_type".`),
		),
		mcplib.WithString("order",
			mcplib.Description("Sort order field; prefix with '-' for descending."),
		),
		mcplib.WithNumber("per_page",
			mcplib.Description("Page size (default 100)."),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleQueryResource}
}

// queryResult is the trimmed document returned by query_resource.
type queryResult struct {
	Data     []pco.Resource `json:"data"`
	Included []pco.Resource `json:"included,omitempty"`
}

func (s *Server) handleQueryResource(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	path, ok := stringArg(req, "path")
	if !ok || path == "" {
		return resultFailf("query_resource: path is required"), nil
	}

	base := pco.PeopleURL
	if app, _ := stringArg(req, "app"); app == "check-ins" {
		base = pco.CheckinsURL
	}

	p := pco.NewParams().PerPage(intArg(req, "per_page", 100))
	for field, v := range mapArg(req, "where") {
		switch val := v.(type) {
		case string:
			p.Where(field, val)
		case map[string]any:
			for op, ov := range val {
				if sv, ok := ov.(string); ok {
					p.WhereOp(field, op, sv)
				}
			}
		}
	}
	if inc, _ := stringArg(req, "include"); inc != "" {
		p.Include(strings.Split(inc, ",")...)
	}
	if order, _ := stringArg(req, "order"); order != "" {
		p.Order(order)
	}

	doc, err := s.client.GetAll(ctx, pco.URL(base, strings.Split(strings.Trim(path, "/"), "/")...), p)
	if err != nil {
		return resultFailf("Failed to query %s: %s", path, err), nil
	}
	return resultJSON(queryResult{Data: doc.Data, Included: doc.Included})
}
