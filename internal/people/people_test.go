package people

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easthillchurch/pcomcp/internal/pco"
)

// fakeClient serves canned documents keyed by request URL.
type fakeClient struct {
	docs    map[string]*pco.Document
	errs    map[string]error
	queries map[string]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		docs:    make(map[string]*pco.Document),
		errs:    make(map[string]error),
		queries: make(map[string]string),
	}
}

func (f *fakeClient) Get(_ context.Context, u string, p *pco.Params) (*pco.Document, error) {
	f.queries[u] = p.Encode()
	if err, ok := f.errs[u]; ok {
		return nil, err
	}
	if doc, ok := f.docs[u]; ok {
		return doc, nil
	}
	return &pco.Document{}, nil
}

func (f *fakeClient) GetAll(ctx context.Context, u string, p *pco.Params) (*pco.Document, error) {
	return f.Get(ctx, u, p)
}

func personDoc(t *testing.T, s string) *pco.Document {
	t.Helper()
	var doc pco.Document
	require.NoError(t, json.Unmarshal([]byte(s), &doc))
	return &doc
}

func TestAgeAt(t *testing.T) {
	now := time.Date(2025, 9, 21, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthdate string
		want      int
		ok        bool
	}{
		{"birthday passed this year", "1990-03-10", 35, true},
		{"birthday later this year", "1990-12-01", 34, true},
		{"birthday today", "1990-09-21", 35, true},
		{"birthday tomorrow", "1990-09-22", 34, true},
		{"timestamp format", "1990-03-10T00:00:00Z", 35, true},
		{"garbage", "March 10th", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ageAt(tt.birthdate, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFlattenPerson(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		doc := personDoc(t, `{"data":{"type":"Person","id":"42","attributes":{
			"name":"Avery Quinn","first_name":"Avery","last_name":"Quinn",
			"login_identifier":"avery@example.org","gender":"F",
			"membership":"Member","birthdate":"1990-03-10",
			"passed_background_check":true,"status":"active"}}}`)
		r, ok := doc.First()
		require.True(t, ok)

		p := flattenPerson(r)
		assert.Equal(t, "42", p.ID)
		assert.Equal(t, "Avery Quinn", p.Name)
		assert.Equal(t, "avery@example.org", p.Email, "email comes from login_identifier")
		require.NotNil(t, p.Age)
		assert.GreaterOrEqual(t, *p.Age, 35)
		require.NotNil(t, p.BackgroundCheckApproved)
		assert.True(t, *p.BackgroundCheckApproved)
	})

	t.Run("missing optionals stay nil", func(t *testing.T) {
		doc := personDoc(t, `{"data":{"type":"Person","id":"7","attributes":{"name":"Kim Lee"}}}`)
		r, _ := doc.First()

		p := flattenPerson(r)
		assert.Nil(t, p.Age, "no birthdate, no age")
		assert.Nil(t, p.BackgroundCheckApproved, "absent is unknown, not false")
		assert.Empty(t, p.Email)
	})
}

func TestService_Search(t *testing.T) {
	peopleURL := pco.URL(pco.PeopleURL, "people")

	fc := newFakeClient()
	fc.docs[peopleURL] = personDoc(t, `{"data":[
		{"type":"Person","id":"1","attributes":{"name":"Avery Quinn"}},
		{"type":"Person","id":"2","attributes":{"name":"Avery Smith"}}]}`)
	s := New(fc, nil)

	found, err := s.Search(t.Context(), "avery")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Avery Quinn", found[0].Name)
	assert.Contains(t, fc.queries[peopleURL], "where%5Bsearch_name_or_email%5D=avery")
}

func TestService_Details(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[pco.URL(pco.PeopleURL, "people", "42")] = personDoc(t,
			`{"data":{"type":"Person","id":"42","attributes":{"name":"Avery Quinn"}}}`)
		s := New(fc, nil)

		p, err := s.Details(t.Context(), "42")
		require.NoError(t, err)
		assert.Equal(t, "Avery Quinn", p.Name)
	})

	t.Run("empty response", func(t *testing.T) {
		s := New(newFakeClient(), nil)
		_, err := s.Details(t.Context(), "nope")
		assert.ErrorContains(t, err, "empty response")
	})
}

func TestService_Addresses(t *testing.T) {
	u := pco.URL(pco.PeopleURL, "people", "42", "addresses")

	t.Run("current field spellings", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[u] = personDoc(t, `{"data":[{"type":"Address","id":"a1","attributes":{
			"street_line_1":"1 Main St","city":"Portland","state":"OR","zip":"97201","primary":true}}]}`)
		s := New(fc, nil)

		aa, err := s.Addresses(t.Context(), "42")
		require.NoError(t, err)
		require.Len(t, aa, 1)
		assert.Equal(t, "1 Main St", aa[0].Street)
		assert.Equal(t, "Portland", aa[0].City)
		assert.True(t, aa[0].Primary)
	})

	t.Run("legacy field spellings", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[u] = personDoc(t, `{"data":[{"type":"Address","id":"a1","attributes":{
			"street":"2 Oak Ave","locality":"Salem","region":"OR","postal_code":"97301"}}]}`)
		s := New(fc, nil)

		aa, err := s.Addresses(t.Context(), "42")
		require.NoError(t, err)
		require.Len(t, aa, 1)
		assert.Equal(t, "2 Oak Ave", aa[0].Street)
		assert.Equal(t, "Salem", aa[0].City)
		assert.Equal(t, "OR", aa[0].State)
		assert.Equal(t, "97301", aa[0].Zip)
	})
}
