// Package jobs runs the background re-embedding loop that keeps stored
// vectors in sync with catalog text.
package jobs

import (
	"context"
	"log"
	"time"
)

const (
	// DefaultBatchSize bounds how many stale products one poll cycle embeds.
	DefaultBatchSize = 50
)

// StaleEmbedder regenerates vectors for products whose catalog text changed
// after their embedding was written.
type StaleEmbedder interface {
	EmbedStale(ctx context.Context, limit int) (int, error)
}

// EmbeddingWorker polls for stale products and re-embeds them one batch per
// cycle. A cycle that errors is logged and retried on the next tick.
type EmbeddingWorker struct {
	embedder     StaleEmbedder
	batchSize    int
	pollInterval time.Duration
	stopChan     chan struct{}
	doneChan     chan struct{}
}

// NewEmbeddingWorker creates an EmbeddingWorker. A batchSize of zero or less
// falls back to DefaultBatchSize.
func NewEmbeddingWorker(embedder StaleEmbedder, batchSize int, pollInterval time.Duration) *EmbeddingWorker {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &EmbeddingWorker{
		embedder:     embedder,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start runs the polling loop until the context is cancelled or Stop is
// called.
func (w *EmbeddingWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("re-embedding worker started, poll interval %v, batch size %d", w.pollInterval, w.batchSize)

	for {
		select {
		case <-ctx.Done():
			log.Println("re-embedding worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("re-embedding worker stopped")
			return
		case <-ticker.C:
			if err := w.runOnce(ctx); err != nil {
				log.Printf("re-embedding cycle failed: %v", err)
			}
		}
	}
}

// Stop signals the loop to exit and waits for the current cycle to finish.
func (w *EmbeddingWorker) Stop() {
	close(w.stopChan)
	<-w.doneChan
}

func (w *EmbeddingWorker) runOnce(ctx context.Context) error {
	embedded, err := w.embedder.EmbedStale(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if embedded > 0 {
		log.Printf("re-embedded %d stale products", embedded)
	}
	return nil
}
