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

// In this file: the JSON:API document model and attribute accessors.

import (
	"bytes"
	"encoding/json"
)

// Document is a JSON:API top-level document: primary data, side-loaded
// "included" resources of a compound document, and pagination links.
type Document struct {
	Links    Links           `json:"links,omitempty"`
	Data     ResourceList    `json:"data"`
	Included []Resource      `json:"included,omitempty"`
	Meta     json.RawMessage `json:"meta,omitempty"`
}

// First returns the primary resource of a single-resource document.
func (d *Document) First() (Resource, bool) {
	if d == nil || len(d.Data) == 0 {
		return Resource{}, false
	}
	return d.Data[0], true
}

// Links holds the pagination links of a collection document.  Next is fully
// qualified: it already encodes the query parameters of the initial request.
type Links struct {
	Self string `json:"self,omitempty"`
	Next string `json:"next,omitempty"`
}

// ResourceList unmarshals from either a single resource object or an array
// of resources: the backend returns an object for single-resource endpoints
// and an array for collections.
type ResourceList []Resource

func (rl *ResourceList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*rl = nil
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, (*[]Resource)(rl))
	}
	var r Resource
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	*rl = ResourceList{r}
	return nil
}

// Resource is a single JSON:API resource object.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// StringAttr returns a string attribute, or "" when it is absent, null or
// not a string.
func (r Resource) StringAttr(name string) string {
	s, _ := r.Attributes[name].(string)
	return s
}

// IntAttr returns an integer attribute.  Missing or null values are 0, never
// an error: headcount totals default to zero.
func (r Resource) IntAttr(name string) int {
	switch v := r.Attributes[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// BoolAttr returns a boolean attribute, or false when absent.
func (r Resource) BoolAttr(name string) bool {
	b, _ := r.Attributes[name].(bool)
	return b
}

// RelatedID returns the id of the named to-one relationship.  ok is false
// when the relationship or its linkage is absent.
func (r Resource) RelatedID(name string) (string, bool) {
	rel, ok := r.Relationships[name]
	if !ok {
		return "", false
	}
	ref, ok := rel.Data.First()
	if !ok || ref.ID == "" {
		return "", false
	}
	return ref.ID, true
}

// Relationship is a JSON:API relationship object.
type Relationship struct {
	Data Linkage `json:"data"`
}

// Linkage is resource linkage that accepts a single identifier, an array of
// identifiers, or null.
type Linkage struct {
	refs []ResourceIdentifier
}

// ResourceIdentifier identifies a related resource by type and id.
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (l *Linkage) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		l.refs = nil
		return nil
	}
	if b[0] == '[' {
		return json.Unmarshal(b, &l.refs)
	}
	var ref ResourceIdentifier
	if err := json.Unmarshal(b, &ref); err != nil {
		return err
	}
	l.refs = []ResourceIdentifier{ref}
	return nil
}

func (l Linkage) MarshalJSON() ([]byte, error) {
	switch len(l.refs) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(l.refs[0])
	default:
		return json.Marshal(l.refs)
	}
}

// First returns the first linked identifier of the relationship.
func (l Linkage) First() (ResourceIdentifier, bool) {
	if len(l.refs) == 0 {
		return ResourceIdentifier{}, false
	}
	return l.refs[0], true
}
