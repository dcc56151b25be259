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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_Unmarshal(t *testing.T) {
	t.Run("single-resource data becomes a one-element list", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"data":{"type":"Event","id":"701347","attributes":{"name":"Sunday"}}}`), &doc)
		require.NoError(t, err)
		require.Len(t, doc.Data, 1)
		r, ok := doc.First()
		assert.True(t, ok)
		assert.Equal(t, "701347", r.ID)
		assert.Equal(t, "Sunday", r.StringAttr("name"))
	})

	t.Run("collection data stays a list", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"data":[{"type":"Person","id":"1"},{"type":"Person","id":"2"}],"links":{"next":"https://x/page2"}}`), &doc)
		require.NoError(t, err)
		assert.Len(t, doc.Data, 2)
		assert.Equal(t, "https://x/page2", doc.Links.Next)
	})

	t.Run("null data is empty", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"data":null}`), &doc)
		require.NoError(t, err)
		assert.Empty(t, doc.Data)
		_, ok := doc.First()
		assert.False(t, ok)
	})

	t.Run("to-one relationship linkage", func(t *testing.T) {
		var doc Document
		err := json.Unmarshal([]byte(`{"data":[{
			"type":"Headcount","id":"hc1",
			"attributes":{"total":42},
			"relationships":{
				"event_time":{"data":{"type":"EventTime","id":"et1"}},
				"attendance_type":{"data":null}
			}}]}`), &doc)
		require.NoError(t, err)
		r := doc.Data[0]

		id, ok := r.RelatedID("event_time")
		assert.True(t, ok)
		assert.Equal(t, "et1", id)

		_, ok = r.RelatedID("attendance_type")
		assert.False(t, ok, "null linkage has no related id")
		_, ok = r.RelatedID("location")
		assert.False(t, ok, "absent relationship has no related id")
	})

	t.Run("to-many relationship linkage keeps the first id", func(t *testing.T) {
		var rel Relationship
		err := json.Unmarshal([]byte(`{"data":[{"type":"Headcount","id":"a"},{"type":"Headcount","id":"b"}]}`), &rel)
		require.NoError(t, err)
		ref, ok := rel.Data.First()
		assert.True(t, ok)
		assert.Equal(t, "a", ref.ID)
	})
}

func TestResource_attrs(t *testing.T) {
	r := Resource{Attributes: map[string]any{
		"total":   float64(42),
		"name":    "EH 10:15am",
		"flag":    true,
		"nothing": nil,
	}}

	assert.Equal(t, 42, r.IntAttr("total"))
	assert.Equal(t, 0, r.IntAttr("missing"))
	assert.Equal(t, 0, r.IntAttr("nothing"))
	assert.Equal(t, "EH 10:15am", r.StringAttr("name"))
	assert.Equal(t, "", r.StringAttr("missing"))
	assert.True(t, r.BoolAttr("flag"))
	assert.False(t, r.BoolAttr("missing"))
}

func TestParams(t *testing.T) {
	tests := []struct {
		name string
		p    *Params
		want string
	}{
		{"nil params", nil, ""},
		{"empty params", NewParams(), ""},
		{"equality filter", NewParams().Where("status", "approved"), "where%5Bstatus%5D=approved"},
		{
			"operator filter",
			NewParams().WhereOp("starts_at", "gte", "2025-09-21"),
			"where%5Bstarts_at%5D%5Bgte%5D=2025-09-21",
		},
		{
			"include joins with commas",
			NewParams().Include("headcounts", "headcounts.attendance_type"),
			"include=headcounts%2Cheadcounts.attendance_type",
		},
		{
			"combined",
			NewParams().Order("starts_at").PerPage(100),
			"order=starts_at&per_page=100",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Encode())
		})
	}
}
