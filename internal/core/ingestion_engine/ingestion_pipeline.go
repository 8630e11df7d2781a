package ingestion_engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/markdave123-py/Extracta/internal/core"
	"github.com/markdave123-py/Extracta/internal/models"
	"golang.org/x/sync/errgroup"
)

// NewDocumentIngestor constructs the ingestor with a bounded job queue (64).
func NewDocumentIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, extractor core.DocumentExtractor, cfg *IngestConfig) *DocumentIngestor {
	return &DocumentIngestor{
		db: db, obj: obj, embedder: emb, cfg: cfg, extractor: extractor,
		jobs: make(chan string, 64),
	}
}

// Start runs worker goroutines reading from the jobs channel.
// Each worker drives the pipeline that extracts, chunks, embeds and persists docs.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("DocumentIngestor: Worker shutting down.")
					return
				case docID := <-i.jobs:
					log.Printf("DocumentIngestor: Processing document %s by worker with ID %d", docID, w)

					if err := i.ProcessOne(ctx, docID); err != nil {
						log.Printf("DocumentIngestor: Error processing document %s: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for processing.
// If the queue is full, this call will block until space frees up.
func (i *DocumentIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// ProcessOne extracts, records, chunks, embeds and persists a single document.
func (i *DocumentIngestor) ProcessOne(ctx context.Context, docID string) error {
	// Fresh context with a longer timeout: extraction across the full
	// fallback chain can legitimately take minutes.
	proctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	doc, err := i.db.GetDocumentByID(ctx, docID)
	if err != nil || doc == nil {
		return fmt.Errorf("document not found: %w", err)
	}

	_ = i.db.UpdateDocumentStatus(ctx, docID, "processing")

	bucket, key := parseS3URL(doc.StorageURL)

	// Stream the object under the long-lived processing context so a
	// large document is not cut off mid-download.
	body, err := i.obj.GetObjectReader(proctx, bucket, key)
	if err != nil {
		_ = i.db.UpdateDocumentStatus(ctx, docID, "failed")
		return fmt.Errorf("get object: %w", err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		_ = i.db.UpdateDocumentStatus(ctx, docID, "failed")
		return fmt.Errorf("read object: %w", err)
	}

	outcome, err := i.extractor.ExtractText(proctx, data, doc.ContentType)
	if err != nil {
		_ = i.db.UpdateDocumentStatus(ctx, docID, "failed")
		return fmt.Errorf("extract document %s: %w", docID, err)
	}

	ext := &models.Extraction{
		ID:            uuid.NewString(),
		DocumentID:    docID,
		Text:          outcome.Text,
		Backend:       outcome.Backend,
		QualityTier:   outcome.QualityTier,
		AttemptCount:  outcome.AttemptCount,
		FallbackChain: strings.Join(outcome.FallbackChain, "; "),
		PageCount:     outcome.PageCount,
		Chunked:       outcome.Chunked,
		FailedChunks:  outcome.FailedChunks,
		OCRChunks:     outcome.OCRChunks,
		TimeoutHit:    outcome.TimeoutHit,
		DurationMs:    outcome.Duration.Milliseconds(),
		CreatedAt:     time.Now(),
	}
	if err := i.db.CreateExtraction(proctx, ext); err != nil {
		_ = i.db.UpdateDocumentStatus(ctx, docID, "failed")
		return fmt.Errorf("persist extraction: %w", err)
	}

	log.Printf("DocumentIngestor: document %s extracted via %s (tier=%s attempts=%d pages=%d)",
		docID, outcome.Backend, outcome.QualityTier, outcome.AttemptCount, outcome.PageCount)

	// Build an errgroup to tie the indexing stages together.
	g, gctx := errgroup.WithContext(proctx)

	// extracted text -> fragments (receive-only channel).
	fragCh := i.streamFragments(gctx, g, outcome.Text)

	// fragments -> chunks (receive-only channel).
	chunkCh := i.streamChunk(gctx, g, fragCh, i.cfg.TargetTokens, i.cfg.OverlapTokens)

	// chunks -> embed + persist.
	g.Go(func() error {
		return i.embedAndPersist(gctx, docID, chunkCh, i.cfg.BatchSize, i.cfg.EmbedDim)
	})

	// Wait for all stages. Any error cancels the rest.
	if err := g.Wait(); err != nil {
		_ = i.db.UpdateDocumentStatus(ctx, docID, "failed")
		return err
	}

	// Success.
	return i.db.UpdateDocumentStatus(ctx, docID, "ready")
}

// streamFragments feeds the extracted text line by line into the
// chunking stage, skipping blank lines.
func (i *DocumentIngestor) streamFragments(ctx context.Context, g *errgroup.Group, text string) <-chan string {
	out := make(chan string, 32)

	g.Go(func() error {
		defer close(out)
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			select {
			case out <- line:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return out
}

// parseS3URL extracts the bucket and key from a typical virtual-hosted–style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func parseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}
