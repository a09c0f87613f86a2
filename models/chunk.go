package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chunk is one retrievable unit of ingested text, scoped to an owner and a
// source document. Chunks are never mutated in place: re-ingesting a document
// replaces its whole chunk set.
type Chunk struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ChunkID        string             `bson:"chunk_id" json:"chunk_id"`
	Owner          string             `bson:"owner" json:"owner"`
	SourceDocument string             `bson:"source_document" json:"source_document"`
	SequenceIndex  int                `bson:"sequence_index" json:"sequence_index"`
	Text           string             `bson:"text" json:"text"`
	Vector         []float32          `bson:"vector,omitempty" json:"-"`
	InsertedAt     time.Time          `bson:"inserted_at" json:"inserted_at"`
}

// DocumentMeta is one entry of the per-owner upload log. The log is
// append-only: re-uploading a filename appends a fresh entry with the next
// sequential id while the chunk set for that filename is replaced. The two
// stores are deliberately not reconciled.
type DocumentMeta struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Owner      string             `bson:"owner" json:"-"`
	SeqID      int                `bson:"seq_id" json:"id"`
	Filename   string             `bson:"filename" json:"filename"`
	UploadedAt time.Time          `bson:"uploaded_at" json:"uploaded_at"`
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
