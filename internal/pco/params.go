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

package pco

// In this file: the query parameter builder.

import (
	"net/url"
	"strconv"
	"strings"
)

// Params builds the query-string conventions of the backend:
// where[field]=v, where[field][op]=v, include=a,b.c, order=f, per_page=N.
type Params struct {
	v url.Values
}

// NewParams returns an empty parameter set.
func NewParams() *Params {
	return &Params{v: url.Values{}}
}

// Where adds an equality filter on field.
func (p *Params) Where(field, value string) *Params {
	p.v.Set("where["+field+"]", value)
	return p
}

// WhereOp adds a filter on field with an explicit operator, e.g.
// WhereOp("starts_at", "gte", "2025-09-21").
func (p *Params) WhereOp(field, op, value string) *Params {
	p.v.Set("where["+field+"]["+op+"]", value)
	return p
}

// Include requests side-loading of the given relationship paths.
func (p *Params) Include(relations ...string) *Params {
	p.v.Set("include", strings.Join(relations, ","))
	return p
}

// Order sets the sort order of a collection request.
func (p *Params) Order(field string) *Params {
	p.v.Set("order", field)
	return p
}

// PerPage sets the page size of a collection request.
func (p *Params) PerPage(n int) *Params {
	p.v.Set("per_page", strconv.Itoa(n))
	return p
}

// Encode returns the encoded query string.  A nil Params encodes to "".
func (p *Params) Encode() string {
	if p == nil {
		return ""
	}
	return p.v.Encode()
}
