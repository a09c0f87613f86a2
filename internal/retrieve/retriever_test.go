package retrieve

import (
	"context"
	"testing"

	"docuchat-backend/internal/store/storetest"
)

func TestRetrieveReturnsRankedTexts(t *testing.T) {
	chunks := storetest.NewMemoryChunkStore(nil)
	ctx := context.Background()

	fragments := []string{
		"Paris is the capital of France.",
		"Photosynthesis converts light into chemical energy.",
	}
	if _, err := chunks.Upsert(ctx, "alice", "facts.txt", fragments); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(chunks, 1)
	texts, err := r.Retrieve(ctx, "alice", "What is the capital of France?")
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != 1 {
		t.Fatalf("expected 1 text, got %d", len(texts))
	}
	if texts[0] != "Paris is the capital of France." {
		t.Errorf("expected the capital fact, got %q", texts[0])
	}
}

func TestRetrieveEmptyIsNotAnError(t *testing.T) {
	r := NewRetriever(storetest.NewMemoryChunkStore(nil), 3)

	texts, err := r.Retrieve(context.Background(), "alice", "anything at all")
	if err != nil {
		t.Fatalf("empty store should not error: %v", err)
	}
	if len(texts) != 0 {
		t.Errorf("expected no matches, got %d", len(texts))
	}
}

func TestRetrieveDefaultLimit(t *testing.T) {
	chunks := storetest.NewMemoryChunkStore(nil)
	ctx := context.Background()

	fragments := []string{
		"capital city one", "capital city two", "capital city three",
		"capital city four", "capital city five",
	}
	if _, err := chunks.Upsert(ctx, "alice", "cities.txt", fragments); err != nil {
		t.Fatal(err)
	}

	// Non-positive limit falls back to DefaultLimit.
	r := NewRetriever(chunks, 0)
	texts, err := r.Retrieve(ctx, "alice", "capital city")
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != DefaultLimit {
		t.Errorf("expected %d texts, got %d", DefaultLimit, len(texts))
	}
}

func TestRetrieveScopedToOwner(t *testing.T) {
	chunks := storetest.NewMemoryChunkStore(nil)
	ctx := context.Background()

	if _, err := chunks.Upsert(ctx, "bob", "secret.txt", []string{"bob's private notes"}); err != nil {
		t.Fatal(err)
	}

	r := NewRetriever(chunks, 3)
	texts, err := r.Retrieve(ctx, "alice", "private notes")
	if err != nil {
		t.Fatal(err)
	}
	if len(texts) != 0 {
		t.Errorf("alice must not see bob's chunks, got %v", texts)
	}
}
