package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptySeed(time.Time) (Blob, error) {
	return Blob{}, nil
}

func newTestStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	return New(Options{Backend: backend, Seed: emptySeed})
}

func TestInsertAssignsIDAndCreatedAt(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())

	doc, err := s.Insert(context.Background(), Projects, Document{"name": "Apollo"})
	require.NoError(t, err)

	assert.NotEmpty(t, doc[FieldID])
	assert.NotEmpty(t, doc[FieldCreatedAt])
	assert.Equal(t, "Apollo", doc["name"])

	got, ok, err := s.Get(context.Background(), Projects, doc[FieldID].(string))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc[FieldID], got[FieldID])
}

func TestGetAbsentIsNotAnError(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())

	_, ok, err := s.Get(context.Background(), Projects, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateMergesShallow(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())

	doc, err := s.Insert(context.Background(), Risks, Document{"title": "Cert expiry", "status": "Open"})
	require.NoError(t, err)
	id := doc[FieldID].(string)

	updated, ok, err := s.Update(context.Background(), Risks, id, Document{"status": "Resolved"})
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Resolved", updated["status"])
	assert.Equal(t, "Cert expiry", updated["title"])
	assert.Equal(t, doc[FieldCreatedAt], updated[FieldCreatedAt])
}

func TestUpdateMissingDoesNotSave(t *testing.T) {
	backend := NewMemoryBackend()
	s := newTestStore(t, backend)

	_, err := s.Insert(context.Background(), Risks, Document{"title": "only one"})
	require.NoError(t, err)

	_, ok, err := s.Update(context.Background(), Risks, "missing", Document{"status": "Resolved"})
	require.NoError(t, err)
	assert.False(t, ok)

	docs, err := s.All(context.Background(), Risks)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "only one", docs[0]["title"])
}

func TestRemove(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())

	doc, err := s.Insert(context.Background(), Projects, Document{"name": "gone soon"})
	require.NoError(t, err)

	ok, err := s.Remove(context.Background(), Projects, doc[FieldID].(string))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Remove(context.Background(), Projects, doc[FieldID].(string))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryPreservesInsertionOrder(t *testing.T) {
	s := newTestStore(t, NewMemoryBackend())

	for _, name := range []string{"a", "b", "c"} {
		_, err := s.Insert(context.Background(), CheckIns, Document{"employee": "u2", "summary": name})
		require.NoError(t, err)
	}
	_, err := s.Insert(context.Background(), CheckIns, Document{"employee": "u3", "summary": "other"})
	require.NoError(t, err)

	docs, err := s.Query(context.Background(), CheckIns, func(d Document) bool {
		return d["employee"] == "u2"
	})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "a", docs[0]["summary"])
	assert.Equal(t, "c", docs[2]["summary"])
}

func TestDataSurvivesRestart(t *testing.T) {
	backend := NewMemoryBackend()

	first := newTestStore(t, backend)
	doc, err := first.Insert(context.Background(), Projects, Document{"name": "persisted"})
	require.NoError(t, err)

	// A fresh store over the same backend sees the earlier write.
	second := newTestStore(t, backend)
	got, ok, err := second.Get(context.Background(), Projects, doc[FieldID].(string))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "persisted", got["name"])
}

func TestSeedWrittenOnFirstAccess(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(Options{Backend: backend, Seed: DefaultSeed})

	users, err := s.All(context.Background(), Users)
	require.NoError(t, err)
	require.Len(t, users, 4)

	projects, err := s.All(context.Background(), Projects)
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	risks, err := s.All(context.Background(), Risks)
	require.NoError(t, err)
	assert.Len(t, risks, 1)

	// Seed is written once, not regenerated per read.
	again, err := s.All(context.Background(), Users)
	require.NoError(t, err)
	assert.Equal(t, users[0][FieldID], again[0][FieldID])
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()

	fb, err := NewFileBackend(dir, "pulse_test")
	require.NoError(t, err)

	_, ok, err := fb.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	blob := Blob{Projects: {{FieldID: "p1", "name": "saved"}}}
	require.NoError(t, fb.Save(context.Background(), blob))

	reopened, err := NewFileBackend(dir, "pulse_test")
	require.NoError(t, err)
	loaded, ok, err := reopened.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, loaded[Projects], 1)
	assert.Equal(t, "saved", loaded[Projects][0]["name"])
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	type record struct {
		ID   string `json:"_id"`
		Name string `json:"name"`
	}

	doc, err := Encode(record{ID: "r1", Name: "typed"})
	require.NoError(t, err)
	assert.Equal(t, "r1", doc["_id"])

	decoded, err := Decode[record](doc)
	require.NoError(t, err)
	assert.Equal(t, "typed", decoded.Name)
}
