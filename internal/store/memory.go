package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// MemoryBackend keeps the serialized blob in process memory. Used in tests
// and as a stand-in when no durable backend is configured. The blob is held
// as JSON bytes so every Load/Save is a real serialization round trip, the
// same as the durable backends.
type MemoryBackend struct {
	raw []byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Load implements Backend.
func (b *MemoryBackend) Load(_ context.Context) (Blob, bool, error) {
	if b.raw == nil {
		return nil, false, nil
	}
	var blob Blob
	if err := json.Unmarshal(b.raw, &blob); err != nil {
		return nil, false, fmt.Errorf("unmarshal blob: %w", err)
	}
	return blob, true, nil
}

// Save implements Backend.
func (b *MemoryBackend) Save(_ context.Context, blob Blob) error {
	raw, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal blob: %w", err)
	}
	b.raw = raw
	return nil
}
