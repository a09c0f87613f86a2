package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"docuchat-backend/internal/extract"
	"docuchat-backend/internal/logger"
	"docuchat-backend/internal/store"
	"docuchat-backend/utils"
)

// ErrUnsupportedFormat mirrors extract.ErrUnsupportedFormat so callers only
// need this package for the ingestion taxonomy.
var ErrUnsupportedFormat = extract.ErrUnsupportedFormat

// ErrExtractionFailed wraps failures raised by the extraction collaborator.
var ErrExtractionFailed = errors.New("extraction failed")

// Pipeline turns raw uploads into indexed chunks. Ingestion is fully
// synchronous: when Ingest returns, the chunk set is durable and the
// document metadata entry is appended. Nothing here retries; failed uploads
// are reported to the caller as-is.
type Pipeline struct {
	chunks     store.ChunkStore
	documents  store.DocumentLog
	extractor  extract.Extractor
	archiveDir string
}

// NewPipeline wires the pipeline. archiveDir may be empty to disable the raw
// upload archive.
func NewPipeline(chunks store.ChunkStore, documents store.DocumentLog, extractor extract.Extractor, archiveDir string) *Pipeline {
	return &Pipeline{
		chunks:     chunks,
		documents:  documents,
		extractor:  extractor,
		archiveDir: archiveDir,
	}
}

// Ingest extracts text fragments from raw, replaces the chunk set for
// (owner, filename), and appends a metadata entry to the owner's upload log.
// Returns the number of stored fragments; zero is a valid outcome for a
// document with no extractable text.
func (p *Pipeline) Ingest(ctx context.Context, owner, filename string, raw []byte) (int, error) {
	// Extension gate runs before extraction so unsupported uploads fail
	// fast and cheap.
	if !extract.SupportedExtension(filename) {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	fragments, err := p.extractor.Extract(raw, filename)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			return 0, err
		}
		return 0, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	count, err := p.chunks.Upsert(ctx, owner, filename, fragments)
	if err != nil {
		return 0, err
	}

	meta, err := p.documents.Append(ctx, owner, filename)
	if err != nil {
		return 0, err
	}

	p.archiveRaw(owner, filename, raw)

	logger.Info("document ingested",
		"owner", owner,
		"filename", filename,
		"seq_id", meta.SeqID,
		"fragments", count,
	)

	return count, nil
}

// archiveRaw keeps a brotli-compressed copy of the upload for reprocessing.
// Archive failures are logged, never surfaced: the index write already
// succeeded and that is the contract that matters.
func (p *Pipeline) archiveRaw(owner, filename string, raw []byte) {
	if p.archiveDir == "" {
		return
	}

	compressed, err := utils.CompressBrotli(raw)
	if err != nil {
		logger.Warn("failed to compress upload archive", "filename", filename, "error", err)
		return
	}

	dir := filepath.Join(p.archiveDir, owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("failed to create archive dir", "dir", dir, "error", err)
		return
	}

	path := filepath.Join(dir, filepath.Base(filename)+".br")
	if err := os.WriteFile(path, compressed, 0o644); err != nil {
		logger.Warn("failed to write upload archive", "path", path, "error", err)
	}
}
