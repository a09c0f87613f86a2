package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"docuchat-backend/models"
)

// MongoChunkStore is the durable ChunkStore implementation. Chunk vectors are
// computed once at upsert time; queries embed only the query text and rank
// the owner-scoped candidate set in process.
type MongoChunkStore struct {
	chunks   *mongo.Collection
	embedder Embedder
}

func NewMongoChunkStore(db *mongo.Database, embedder Embedder) *MongoChunkStore {
	return &MongoChunkStore{
		chunks:   db.Collection("chunks"),
		embedder: embedder,
	}
}

func (s *MongoChunkStore) Upsert(ctx context.Context, owner, sourceDocument string, fragments []string) (int, error) {
	filtered := FilterFragments(fragments)

	now := time.Now()
	docs := make([]interface{}, 0, len(filtered))
	for i, text := range filtered {
		vector, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embed fragment %d of %s: %w", i, sourceDocument, err)
		}
		docs = append(docs, models.Chunk{
			ChunkID:        uuid.NewString(),
			Owner:          owner,
			SourceDocument: sourceDocument,
			SequenceIndex:  i,
			Text:           text,
			Vector:         vector,
			InsertedAt:     now,
		})
	}

	filter := bson.M{"owner": owner, "source_document": sourceDocument}
	if _, err := s.chunks.DeleteMany(ctx, filter); err != nil {
		return 0, fmt.Errorf("%w: delete chunks for %s: %v", ErrStorageUnavailable, sourceDocument, err)
	}

	if len(docs) == 0 {
		// An all-empty fragment sequence leaves the document with zero chunks.
		return 0, nil
	}

	// A single ordered InsertMany lands the whole dense batch in one command.
	if _, err := s.chunks.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return 0, fmt.Errorf("%w: insert chunks for %s: %v", ErrStorageUnavailable, sourceDocument, err)
	}

	return len(docs), nil
}

func (s *MongoChunkStore) Delete(ctx context.Context, owner, sourceDocument string) error {
	filter := bson.M{"owner": owner, "source_document": sourceDocument}
	if _, err := s.chunks.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("%w: delete chunks for %s: %v", ErrStorageUnavailable, sourceDocument, err)
	}
	return nil
}

func (s *MongoChunkStore) Query(ctx context.Context, owner, text string, limit int) ([]models.Chunk, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	queryVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Owner scoping happens in the filter, never post hoc: chunks of other
	// owners are not even read.
	cursor, err := s.chunks.Find(ctx, bson.M{"owner": owner})
	if err != nil {
		return nil, fmt.Errorf("%w: query chunks: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	var candidates []models.Chunk
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("%w: decode chunks: %v", ErrStorageUnavailable, err)
	}

	return RankChunks(candidates, queryVec, limit), nil
}

// MongoDocumentLog is the durable append-only upload log.
type MongoDocumentLog struct {
	documents *mongo.Collection
}

func NewMongoDocumentLog(db *mongo.Database) *MongoDocumentLog {
	return &MongoDocumentLog{documents: db.Collection("documents")}
}

func (l *MongoDocumentLog) Append(ctx context.Context, owner, filename string) (models.DocumentMeta, error) {
	count, err := l.documents.CountDocuments(ctx, bson.M{"owner": owner})
	if err != nil {
		return models.DocumentMeta{}, fmt.Errorf("%w: count documents: %v", ErrStorageUnavailable, err)
	}

	meta := models.DocumentMeta{
		Owner:      owner,
		SeqID:      int(count) + 1,
		Filename:   filename,
		UploadedAt: time.Now().UTC(),
	}

	if _, err := l.documents.InsertOne(ctx, meta); err != nil {
		return models.DocumentMeta{}, fmt.Errorf("%w: append document metadata: %v", ErrStorageUnavailable, err)
	}

	return meta, nil
}

func (l *MongoDocumentLog) List(ctx context.Context, owner string) ([]models.DocumentMeta, error) {
	cursor, err := l.documents.Find(ctx, bson.M{"owner": owner},
		options.Find().SetSort(bson.M{"seq_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("%w: list documents: %v", ErrStorageUnavailable, err)
	}
	defer cursor.Close(ctx)

	metas := make([]models.DocumentMeta, 0)
	if err := cursor.All(ctx, &metas); err != nil {
		return nil, fmt.Errorf("%w: decode documents: %v", ErrStorageUnavailable, err)
	}

	return metas, nil
}
