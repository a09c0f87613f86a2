// Package storetest provides in-memory ChunkStore, DocumentLog, and Embedder
// implementations for tests. They honor the same contracts as the Mongo
// implementations but are not durable and must never back a running service.
package storetest

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docuchat-backend/internal/store"
	"docuchat-backend/models"
)

const embedDim = 64

// HashEmbedder is a deterministic bag-of-words embedder: each lowercased word
// increments one of embedDim buckets. Texts sharing words land close in
// cosine space, which is enough to exercise ranking.
type HashEmbedder struct{}

func (HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, embedDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?;:\"'()")
		if word == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%embedDim]++
	}
	return vec, nil
}

// MemoryChunkStore implements store.ChunkStore in memory.
type MemoryChunkStore struct {
	mu       sync.RWMutex
	chunks   []models.Chunk
	embedder store.Embedder
	clock    time.Time
}

func NewMemoryChunkStore(embedder store.Embedder) *MemoryChunkStore {
	if embedder == nil {
		embedder = HashEmbedder{}
	}
	return &MemoryChunkStore{embedder: embedder, clock: time.Now()}
}

func (m *MemoryChunkStore) Upsert(ctx context.Context, owner, sourceDocument string, fragments []string) (int, error) {
	filtered := store.FilterFragments(fragments)

	fresh := make([]models.Chunk, 0, len(filtered))
	for i, text := range filtered {
		vec, err := m.embedder.Embed(ctx, text)
		if err != nil {
			return 0, err
		}
		fresh = append(fresh, models.Chunk{
			ChunkID:        uuid.NewString(),
			Owner:          owner,
			SourceDocument: sourceDocument,
			SequenceIndex:  i,
			Text:           text,
			Vector:         vec,
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.Owner == owner && c.SourceDocument == sourceDocument {
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept

	// Monotonic fake clock keeps insertion recency strictly ordered.
	for i := range fresh {
		m.clock = m.clock.Add(time.Millisecond)
		fresh[i].InsertedAt = m.clock
	}
	m.chunks = append(m.chunks, fresh...)

	return len(fresh), nil
}

func (m *MemoryChunkStore) Delete(_ context.Context, owner, sourceDocument string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.Owner == owner && c.SourceDocument == sourceDocument {
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return nil
}

func (m *MemoryChunkStore) Query(ctx context.Context, owner, text string, limit int) ([]models.Chunk, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("query limit must be positive, got %d", limit)
	}

	queryVec, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	candidates := make([]models.Chunk, 0)
	for _, c := range m.chunks {
		if c.Owner == owner {
			candidates = append(candidates, c)
		}
	}
	m.mu.RUnlock()

	return store.RankChunks(candidates, queryVec, limit), nil
}

// All returns every stored chunk, for test assertions.
func (m *MemoryChunkStore) All() []models.Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Chunk, len(m.chunks))
	copy(out, m.chunks)
	return out
}

// MemoryDocumentLog implements store.DocumentLog in memory.
type MemoryDocumentLog struct {
	mu      sync.Mutex
	entries map[string][]models.DocumentMeta
}

func NewMemoryDocumentLog() *MemoryDocumentLog {
	return &MemoryDocumentLog{entries: make(map[string][]models.DocumentMeta)}
}

func (l *MemoryDocumentLog) Append(_ context.Context, owner, filename string) (models.DocumentMeta, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	meta := models.DocumentMeta{
		Owner:      owner,
		SeqID:      len(l.entries[owner]) + 1,
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
	}
	l.entries[owner] = append(l.entries[owner], meta)
	return meta, nil
}

func (l *MemoryDocumentLog) List(_ context.Context, owner string) ([]models.DocumentMeta, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.DocumentMeta, len(l.entries[owner]))
	copy(out, l.entries[owner])
	return out, nil
}
