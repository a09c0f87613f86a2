package store

import (
	"math"
	"sort"
	"strings"

	"docuchat-backend/models"
)

// CosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankChunks scores candidates against the query vector and returns the top
// limit chunks, best first. Equal scores fall back to insertion recency,
// newest first, to keep ordering deterministic.
func RankChunks(candidates []models.Chunk, query []float32, limit int) []models.Chunk {
	scored := make([]models.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, models.ScoredChunk{
			Chunk: c,
			Score: CosineSimilarity(query, c.Vector),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.InsertedAt.After(scored[j].Chunk.InsertedAt)
	})

	if limit > len(scored) {
		limit = len(scored)
	}

	out := make([]models.Chunk, 0, limit)
	for _, s := range scored[:limit] {
		out = append(out, s.Chunk)
	}
	return out
}

// FilterFragments trims every fragment and drops the empty ones, preserving
// order. Sequence indices assigned over the result are therefore dense.
func FilterFragments(fragments []string) []string {
	filtered := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.TrimSpace(f)
		if f != "" {
			filtered = append(filtered, f)
		}
	}
	return filtered
}
