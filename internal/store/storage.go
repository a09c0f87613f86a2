package store

import (
	"context"
	"errors"
	"fmt"

	"docuchat-backend/models"
)

// ErrStorageUnavailable wraps storage-layer I/O failures. The store never
// retries internally: retrying a delete-then-insert sequence is not safe, so
// the caller decides whether to retry the whole operation.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Embedder turns text into a vector for similarity ranking. Implementations
// live in internal/ai; tests inject deterministic ones.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkStore persists text fragments with owner and source metadata.
//
// Concurrent operations across different owners are safe. Concurrent Upsert
// calls for the same (owner, sourceDocument) are a caller obligation to
// avoid; a Query running concurrently with an Upsert sees either the old
// chunk set, the new chunk set, or the (valid) empty set for that document,
// never a partially inserted batch.
type ChunkStore interface {
	// Upsert replaces all chunks for (owner, sourceDocument) with the
	// non-empty trimmed fragments, assigning dense sequence indices starting
	// at 0 over the filtered sequence. Returns the number of stored chunks;
	// zero is a valid outcome, not an error.
	Upsert(ctx context.Context, owner, sourceDocument string, fragments []string) (int, error)

	// Delete removes every chunk matching owner and sourceDocument. Deleting
	// a document that has no chunks is a no-op.
	Delete(ctx context.Context, owner, sourceDocument string) error

	// Query returns up to limit chunks belonging only to owner, ranked by
	// similarity to text, ties broken by insertion recency (newest first).
	// limit must be a positive integer.
	Query(ctx context.Context, owner, text string, limit int) ([]models.Chunk, error)
}

// DocumentLog is the append-only per-owner upload log. Entries accumulate
// across re-uploads of the same filename; they are never removed when the
// corresponding chunk set is replaced.
type DocumentLog interface {
	Append(ctx context.Context, owner, filename string) (models.DocumentMeta, error)
	List(ctx context.Context, owner string) ([]models.DocumentMeta, error)
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("query limit must be positive, got %d", limit)
	}
	return nil
}
