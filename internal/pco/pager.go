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

// In this file: link-following pagination.

import (
	"context"
	"fmt"
)

// GetAll materialises a collection across pages by following the "next"
// link.  The caller-supplied params apply to the first request only:
// subsequent requests use the next link verbatim, as it already encodes
// the original query.  Data and included arrays accumulate in encounter
// order.  Iteration is bounded by the page ceiling so a cyclic link fails
// with ErrPaginationOverrun instead of looping forever.
func (c *Client) GetAll(ctx context.Context, u string, p *Params) (*Document, error) {
	out := &Document{}
	for page := 0; ; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("%w: %d pages fetched from %s", ErrPaginationOverrun, page, u)
		}
		doc, err := c.Get(ctx, u, p)
		if err != nil {
			return nil, err
		}
		out.Data = append(out.Data, doc.Data...)
		out.Included = append(out.Included, doc.Included...)
		if doc.Links.Next == "" {
			return out, nil
		}
		u, p = doc.Links.Next, nil
	}
}
