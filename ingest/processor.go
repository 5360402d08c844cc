package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/rdanilin/docquery/vector"
)

// Processor loads a file, splits it into chunks and stores the chunks
// in one vector collection. Chunks already present are skipped, keyed
// by a content hash, so re-processing a file is idempotent.
type Processor struct {
	collection vector.Collection
	splitter   *Splitter
	log        *zap.Logger
}

func NewProcessor(collection vector.Collection) *Processor {
	return &Processor{
		collection: collection,
		splitter:   NewSplitter(DefaultChunkSize, DefaultChunkOverlap),
		log:        zap.L().With(zap.String("component", "ingest")),
	}
}

// ProcessFile returns the number of chunks added.
func (p *Processor) ProcessFile(ctx context.Context, path string) (int, error) {
	log := p.log.With(
		zap.String("action", "process_file"),
		zap.String("path", path),
	)

	text, err := Load(path)
	if err != nil {
		return 0, err
	}

	chunks := p.splitter.Split(text)

	added := 0
	for i, chunk := range chunks {
		id := documentID(chunk)

		existing, err := p.collection.FindDocument(ctx, id)
		if err == nil && existing.ID == id {
			continue
		}

		doc := vector.Document{
			ID:      id,
			Content: chunk,
			Metadata: map[string]string{
				"source":    path,
				"file_name": filepath.Base(path),
				"file_type": FileType(path),
				"chunk":     strconv.Itoa(i),
			},
		}

		if err := p.collection.AddDocument(ctx, doc); err != nil {
			return added, err
		}

		added++
	}

	log.Info("file processed",
		zap.Int("chunks", len(chunks)),
		zap.Int("added", added),
	)

	return added, nil
}

func documentID(content string) string {
	hash := sha256.Sum256([]byte(content))
	return "doc_" + hex.EncodeToString(hash[:12])
}
