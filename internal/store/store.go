// Package store implements the named-collection document store backing the
// ProjectPulse API. All collections live in a single serialized blob held
// under one fixed key; every mutation is a full read-modify-write of that
// blob, serialized through one mutex so concurrent callers cannot lose
// updates to each other.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Collection names inside the blob.
const (
	Users      = "users"
	Projects   = "projects"
	CheckIns   = "checkins"
	Feedback   = "feedback"
	Risks      = "risks"
	Activities = "activities"
)

// Record field names the store itself owns.
const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
)

// Document is a single untyped record inside a collection.
type Document map[string]any

// Blob maps collection names to their ordered record sequences.
type Blob map[string][]Document

// Backend persists the serialized blob under a fixed key.
type Backend interface {
	// Load returns the blob, or ok=false when no blob has been written yet.
	Load(ctx context.Context) (Blob, bool, error)
	// Save replaces the entire blob.
	Save(ctx context.Context, blob Blob) error
}

// SeedFunc produces the initial dataset written on first access.
type SeedFunc func(now time.Time) (Blob, error)

// Options groups Store constructor dependencies.
type Options struct {
	Backend Backend
	Seed    SeedFunc
	Now     func() time.Time
	NewID   func() string
	Logger  *zap.Logger
}

// Store provides collection-style access over a blob backend.
type Store struct {
	mu      sync.Mutex
	backend Backend
	seed    SeedFunc
	now     func() time.Time
	newID   func() string
	logger  *zap.Logger
}

// New constructs a Store with sane defaults.
func New(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Seed == nil {
		opts.Seed = DefaultSeed
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		backend: opts.Backend,
		seed:    opts.Seed,
		now:     opts.Now,
		newID:   opts.NewID,
		logger:  opts.Logger,
	}
}

// All returns every record of the named collection in insertion order. An
// absent collection yields an empty sequence.
func (s *Store) All(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.loadOrInit(ctx)
	if err != nil {
		return nil, err
	}
	return cloneDocuments(blob[collection]), nil
}

// Get returns the record with the given identifier. A missing record is a
// valid outcome, reported through ok, not an error.
func (s *Store) Get(ctx context.Context, collection, id string) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.loadOrInit(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, doc := range blob[collection] {
		if docID(doc) == id {
			return cloneDocument(doc), true, nil
		}
	}
	return nil, false, nil
}

// Insert assigns a fresh identifier and creation timestamp, appends the
// record to the collection (creating it if absent), persists the blob and
// returns the full record.
func (s *Store) Insert(ctx context.Context, collection string, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.loadOrInit(ctx)
	if err != nil {
		return nil, err
	}

	record := cloneDocument(doc)
	record[FieldID] = s.newID()
	record[FieldCreatedAt] = s.now().Format(time.RFC3339Nano)

	blob[collection] = append(blob[collection], record)
	if err := s.backend.Save(ctx, blob); err != nil {
		return nil, fmt.Errorf("persist %s insert: %w", collection, err)
	}
	return cloneDocument(record), nil
}

// Update shallow-merges the patch over the record with the given identifier
// and persists. Identifier and creation timestamp survive unless the patch
// names them explicitly. A missing record leaves the collection unchanged
// and reports ok=false.
func (s *Store) Update(ctx context.Context, collection, id string, patch Document) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.loadOrInit(ctx)
	if err != nil {
		return nil, false, err
	}

	docs := blob[collection]
	for i, doc := range docs {
		if docID(doc) != id {
			continue
		}
		merged := cloneDocument(doc)
		for k, v := range patch {
			merged[k] = v
		}
		docs[i] = merged
		blob[collection] = docs
		if err := s.backend.Save(ctx, blob); err != nil {
			return nil, false, fmt.Errorf("persist %s update: %w", collection, err)
		}
		return cloneDocument(merged), true, nil
	}
	return nil, false, nil
}

// Remove deletes the record with the given identifier and persists. A
// missing record leaves the collection unchanged and reports ok=false.
func (s *Store) Remove(ctx context.Context, collection, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.loadOrInit(ctx)
	if err != nil {
		return false, err
	}

	docs := blob[collection]
	for i, doc := range docs {
		if docID(doc) != id {
			continue
		}
		blob[collection] = append(docs[:i:i], docs[i+1:]...)
		if err := s.backend.Save(ctx, blob); err != nil {
			return false, fmt.Errorf("persist %s remove: %w", collection, err)
		}
		return true, nil
	}
	return false, nil
}

// Query returns the records satisfying the predicate, preserving insertion
// order.
func (s *Store) Query(ctx context.Context, collection string, pred func(Document) bool) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := s.loadOrInit(ctx)
	if err != nil {
		return nil, err
	}

	var out []Document
	for _, doc := range blob[collection] {
		if pred(doc) {
			out = append(out, cloneDocument(doc))
		}
	}
	return out, nil
}

// loadOrInit deserializes the existing blob, or writes the seed dataset in
// one shot when no blob exists yet. Callers must hold the mutex.
func (s *Store) loadOrInit(ctx context.Context) (Blob, error) {
	blob, ok, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load store blob: %w", err)
	}
	if ok {
		return blob, nil
	}

	seeded, err := s.seed(s.now())
	if err != nil {
		return nil, fmt.Errorf("build seed dataset: %w", err)
	}
	if err := s.backend.Save(ctx, seeded); err != nil {
		return nil, fmt.Errorf("write seed dataset: %w", err)
	}
	s.logger.Info("store seeded", zap.Int("collections", len(seeded)))
	return seeded, nil
}

func docID(doc Document) string {
	id, _ := doc[FieldID].(string)
	return id
}

func cloneDocument(doc Document) Document {
	if doc == nil {
		return Document{}
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func cloneDocuments(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, doc := range docs {
		out[i] = cloneDocument(doc)
	}
	return out
}

// Decode converts a document into a typed record via JSON round-trip,
// rejecting values that do not fit the target shape.
func Decode[T any](doc Document) (T, error) {
	var out T
	raw, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("marshal document: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// DecodeAll converts a document slice into typed records.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		typed, err := Decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, typed)
	}
	return out, nil
}

// Encode converts a typed record into a document.
func Encode(v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return doc, nil
}
