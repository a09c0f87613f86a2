package retrieve

import (
	"context"

	"docuchat-backend/internal/store"
)

// DefaultLimit is the fixed number of chunks pulled into a chat turn.
const DefaultLimit = 3

// Retriever is the read-only similarity search over a user's chunks. It has
// no side effects and treats an empty result set as a legitimate state.
type Retriever struct {
	chunks store.ChunkStore
	limit  int
}

func NewRetriever(chunks store.ChunkStore, limit int) *Retriever {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Retriever{chunks: chunks, limit: limit}
}

// Retrieve returns up to the configured limit of chunk texts belonging to
// owner, ranked by similarity to queryText. Owner scoping is enforced by the
// store; this layer only strips internal chunk metadata.
func (r *Retriever) Retrieve(ctx context.Context, owner, queryText string) ([]string, error) {
	chunks, err := r.chunks.Query(ctx, owner, queryText, r.limit)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return texts, nil
}
