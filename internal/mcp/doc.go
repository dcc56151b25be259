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

// Package mcp exposes the Planning Center people directory and check-in
// attendance reports as MCP tools, over stdio or streamable HTTP.
//
// Tool handlers never raise: every internal failure is converted at this
// boundary into a {"error": "..."} payload, so agent callers always
// receive a well-formed document.  The one deliberate exception is a date
// with no check-in session, which is a normal outcome and is returned as
// partial data.
package mcp
