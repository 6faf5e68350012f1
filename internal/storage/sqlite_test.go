package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := NewStorage(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStorage_SaveAndListLeads(t *testing.T) {
	store := newTestStorage(t)

	first, err := store.SaveLead(Lead{Email: "jane@acme.com", CompanyName: "Acme", URL: "https://acme.com/", User: "jane"})
	require.NoError(t, err)
	second, err := store.SaveLead(Lead{Email: "bob@initech.com", CompanyName: "Initech", URL: "https://initech.com/team", User: "bob"})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	leads, err := store.ListLeads(0)
	require.NoError(t, err)
	require.Len(t, leads, 2)

	// newest first
	assert.Equal(t, "bob@initech.com", leads[0].Email)
	assert.Equal(t, "Initech", leads[0].CompanyName)
	assert.Equal(t, "https://initech.com/team", leads[0].URL)
	assert.Equal(t, "bob", leads[0].User)
	assert.False(t, leads[0].CreatedAt.IsZero())
	assert.Equal(t, "jane@acme.com", leads[1].Email)

	limited, err := store.ListLeads(1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, second, limited[0].ID)
}

func TestStorage_DuplicateLeadsAreKept(t *testing.T) {
	store := newTestStorage(t)

	lead := Lead{Email: "jane@acme.com", CompanyName: "Acme", URL: "https://acme.com/", User: "jane"}
	_, err := store.SaveLead(lead)
	require.NoError(t, err)
	_, err = store.SaveLead(lead)
	require.NoError(t, err)

	leads, err := store.ListLeads(0)
	require.NoError(t, err)
	assert.Len(t, leads, 2)
}

func TestStorage_SaveAndListErrors(t *testing.T) {
	store := newTestStorage(t)

	_, err := store.SaveError(CrawlError{URL: "https://down.example/", Message: "Service Unavailable"})
	require.NoError(t, err)
	_, err = store.SaveError(CrawlError{URL: "notaurl", Message: "missing scheme"})
	require.NoError(t, err)

	errs, err := store.ListErrors(0)
	require.NoError(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, "https://down.example/", errs[0].URL)
	assert.Equal(t, "Service Unavailable", errs[0].Message)
	assert.Equal(t, "notaurl", errs[1].URL)
}

func TestStorage_EmptyTables(t *testing.T) {
	store := newTestStorage(t)

	leads, err := store.ListLeads(10)
	require.NoError(t, err)
	assert.Empty(t, leads)
	assert.NotNil(t, leads)

	errs, err := store.ListErrors(10)
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.NoError(t, store.Ping())
}

func TestStorage_ReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.db")

	store, err := NewStorage(path)
	require.NoError(t, err)
	_, err = store.SaveLead(Lead{Email: "jane@acme.com", CompanyName: "Acme", URL: "https://acme.com/", User: "jane"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := NewStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	leads, err := reopened.ListLeads(0)
	require.NoError(t, err)
	assert.Len(t, leads, 1)
}
