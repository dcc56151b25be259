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

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetAll(t *testing.T) {
	noWait(t)

	t.Run("follows next links and accumulates pages", func(t *testing.T) {
		pageSizes := []int{10, 10, 5}
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("offset"))
			if page == 0 {
				// the original query must reach the first page only
				assert.Equal(t, "25", r.URL.Query().Get("per_page"))
			}
			doc := map[string]any{}
			data := make([]map[string]any, pageSizes[page])
			for i := range data {
				data[i] = map[string]any{"type": "Headcount", "id": fmt.Sprintf("%d-%d", page, i)}
			}
			doc["data"] = data
			doc["included"] = []map[string]any{{"type": "AttendanceType", "id": fmt.Sprintf("at-%d", page)}}
			if page+1 < len(pageSizes) {
				doc["links"] = map[string]string{"next": fmt.Sprintf("%s/?offset=%d", srv.URL, page+1)}
			}
			json.NewEncoder(w).Encode(doc)
		}))
		defer srv.Close()

		c := fastClient()
		doc, err := c.GetAll(t.Context(), srv.URL, NewParams().PerPage(25))
		require.NoError(t, err)
		assert.Len(t, doc.Data, 25)
		assert.Len(t, doc.Included, 3)
		assert.Equal(t, "0-0", doc.Data[0].ID)
		assert.Equal(t, "2-4", doc.Data[24].ID)
	})

	t.Run("single page returns immediately", func(t *testing.T) {
		var calls int
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Write([]byte(`{"data":[{"type":"Person","id":"1"}]}`))
		}))
		defer srv.Close()

		c := fastClient()
		doc, err := c.GetAll(t.Context(), srv.URL, nil)
		require.NoError(t, err)
		assert.Len(t, doc.Data, 1)
		assert.Equal(t, 1, calls)
	})

	t.Run("cyclic next link hits the page ceiling", func(t *testing.T) {
		oldMax := maxPages
		maxPages = 5
		t.Cleanup(func() { maxPages = oldMax })

		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `{"data":[{"type":"Person","id":"1"}],"links":{"next":%q}}`, srv.URL)
		}))
		defer srv.Close()

		c := fastClient()
		_, err := c.GetAll(t.Context(), srv.URL, nil)
		require.ErrorIs(t, err, ErrPaginationOverrun)
	})
}
