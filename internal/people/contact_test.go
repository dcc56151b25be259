package people

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easthillchurch/pcomcp/internal/pco"
)

func TestService_ContactInfo(t *testing.T) {
	personURL := pco.URL(pco.PeopleURL, "people", "42")
	phonesURL := pco.URL(pco.PeopleURL, "people", "42", "phone_numbers")
	emailsURL := pco.URL(pco.PeopleURL, "people", "42", "emails")

	t.Run("all sub-resources fetched", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[personURL] = personDoc(t, `{"data":{"type":"Person","id":"42","attributes":{"name":"Avery Quinn"}}}`)
		fc.docs[phonesURL] = personDoc(t, `{"data":[{"type":"PhoneNumber","id":"p1","attributes":{"number":"555-0101","primary":true}}]}`)
		fc.docs[emailsURL] = personDoc(t, `{"data":[{"type":"Email","id":"e1","attributes":{"address":"avery@example.org"}}]}`)
		s := New(fc, nil)

		ci, err := s.ContactInfo(t.Context(), "42")
		require.NoError(t, err)
		assert.Equal(t, "Avery Quinn", ci.Name)

		phones, ok := ci.PhoneNumbers.([]PhoneNumber)
		require.True(t, ok)
		require.Len(t, phones, 1)
		assert.Equal(t, "555-0101", phones[0].Number)

		addrs, ok := ci.Addresses.([]Address)
		require.True(t, ok)
		assert.Empty(t, addrs)
	})

	t.Run("failed slot is inline, siblings survive", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[personURL] = personDoc(t, `{"data":{"type":"Person","id":"42","attributes":{"name":"Avery Quinn"}}}`)
		fc.errs[phonesURL] = errors.New("boom")
		fc.docs[emailsURL] = personDoc(t, `{"data":[{"type":"Email","id":"e1","attributes":{"address":"avery@example.org"}}]}`)
		s := New(fc, nil)

		ci, err := s.ContactInfo(t.Context(), "42")
		require.NoError(t, err, "a failed sub-resource must not fail the record")

		slot, ok := ci.PhoneNumbers.([]errEntry)
		require.True(t, ok)
		require.Len(t, slot, 1)
		assert.Equal(t, "Failed to get phone numbers: boom", slot[0].Error)

		emails, ok := ci.Emails.([]Email)
		require.True(t, ok)
		assert.Len(t, emails, 1)
	})

	t.Run("missing person fails the whole call", func(t *testing.T) {
		fc := newFakeClient()
		fc.errs[personURL] = errors.New("404")
		s := New(fc, nil)
		_, err := s.ContactInfo(t.Context(), "42")
		assert.Error(t, err)
	})
}

func TestService_SearchWithContactInfo(t *testing.T) {
	peopleURL := pco.URL(pco.PeopleURL, "people")

	t.Run("caps enrichment at five hits", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[peopleURL] = personDoc(t, `{"data":[
			{"type":"Person","id":"1"},{"type":"Person","id":"2"},
			{"type":"Person","id":"3"},{"type":"Person","id":"4"},
			{"type":"Person","id":"5"},{"type":"Person","id":"6"},
			{"type":"Person","id":"7"}]}`)
		s := New(fc, nil)

		out, err := s.SearchWithContactInfo(t.Context(), "smith", true, false, false)
		require.NoError(t, err)
		assert.Len(t, out, searchLimit)
	})

	t.Run("only requested slots are filled", func(t *testing.T) {
		fc := newFakeClient()
		fc.docs[peopleURL] = personDoc(t, `{"data":[{"type":"Person","id":"1","attributes":{"name":"Kim Lee"}}]}`)
		fc.docs[pco.URL(pco.PeopleURL, "people", "1", "phone_numbers")] = personDoc(t,
			`{"data":[{"type":"PhoneNumber","id":"p1","attributes":{"number":"555-0102"}}]}`)
		s := New(fc, nil)

		out, err := s.SearchWithContactInfo(t.Context(), "kim", true, false, false)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.NotNil(t, out[0].PhoneNumbers)
		assert.Nil(t, out[0].Addresses)
		assert.Nil(t, out[0].Emails)
	})
}
