package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/casarom/salesapi/internal/domain"
	"github.com/casarom/salesapi/internal/telemetry"
)

const (
	// DefaultSearchLimit and DefaultSearchAlpha apply when the caller does
	// not specify a value.
	DefaultSearchLimit = 20
	DefaultSearchAlpha = 0.6

	// candidate window per scorer = multiplier x limit, clamped below.
	// Normalization runs over whatever this window fetched, so the final
	// ranking is sensitive to it; treat it as a tunable, not a constant of
	// the algorithm.
	defaultCandidateMultiplier = 2
	minCandidates              = 20
	maxCandidates              = 200
)

// Scorer produces ranked (SKU, raw score) pairs for a query. Both retrieval
// sources sit behind this interface so either can be swapped out (e.g. the
// brute-force vector scan for an ANN index) without touching the fuser.
type Scorer interface {
	Score(ctx context.Context, query string, limit int) ([]ScoredSKU, error)
}

// QueryEncoder encodes text into the vector space of the stored embeddings.
type QueryEncoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// LexicalSearchRepository is the storage-side text matcher backing the
// lexical scorer.
type LexicalSearchRepository interface {
	SearchLexical(ctx context.Context, query string, limit int) ([]ScoredSKU, error)
}

// EmbeddingSource loads every stored (SKU, vector) pair.
type EmbeddingSource interface {
	GetAll(ctx context.Context) ([]*domain.Embedding, error)
}

// ProductResolver resolves final SKUs to display attributes.
type ProductResolver interface {
	GetBySKUs(ctx context.Context, skus []string) (map[string]*domain.Product, error)
}

// SearchResult is one ranked catalog hit.
type SearchResult struct {
	SKU          string
	Name         string
	Brand        string
	UnitPrice    float64
	HybridScore  float64
	LexicalScore float64
	VectorScore  float64
}

// SearchInput represents input for the search operation
type SearchInput struct {
	Query string
	Limit int
	Alpha float64
}

// LexicalScorer scores candidates with the store's full-text matcher.
type LexicalScorer struct {
	repo LexicalSearchRepository
}

func NewLexicalScorer(repo LexicalSearchRepository) *LexicalScorer {
	return &LexicalScorer{repo: repo}
}

func (s *LexicalScorer) Score(ctx context.Context, query string, limit int) ([]ScoredSKU, error) {
	if strings.TrimSpace(query) == "" {
		return []ScoredSKU{}, nil
	}
	return s.repo.SearchLexical(ctx, query, limit)
}

// VectorScorer encodes the query and scans every stored embedding with
// cosine similarity. O(N*D) per query, which is fine at catalog scale;
// larger sets belong behind an ANN index implementing Scorer.
type VectorScorer struct {
	encoder QueryEncoder
	cache   *embeddingCache
}

func NewVectorScorer(encoder QueryEncoder, source EmbeddingSource, cacheTTL time.Duration) *VectorScorer {
	return &VectorScorer{
		encoder: encoder,
		cache:   newEmbeddingCache(source, cacheTTL),
	}
}

func (s *VectorScorer) Score(ctx context.Context, query string, limit int) ([]ScoredSKU, error) {
	queryVec, err := s.encoder.Encode(ctx, query)
	if err != nil {
		return nil, err
	}

	embeddings, err := s.cache.get(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredSKU, 0, len(embeddings))
	for _, e := range embeddings {
		// Entries from a different encoder generation cannot be compared.
		if len(e.Vector) != len(queryVec) {
			continue
		}
		scored = append(scored, ScoredSKU{
			SKU:   e.SKU,
			Score: cosineSimilarity(queryVec, e.Vector),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].SKU < scored[j].SKU
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// embeddingCache keeps the full embedding set in memory, read-mostly, safe
// for concurrent readers, refreshed on a TTL.
type embeddingCache struct {
	source EmbeddingSource
	ttl    time.Duration

	mu       sync.RWMutex
	entries  []*domain.Embedding
	loadedAt time.Time
}

func newEmbeddingCache(source EmbeddingSource, ttl time.Duration) *embeddingCache {
	return &embeddingCache{source: source, ttl: ttl}
}

func (c *embeddingCache) get(ctx context.Context) ([]*domain.Embedding, error) {
	c.mu.RLock()
	if !c.loadedAt.IsZero() && time.Since(c.loadedAt) < c.ttl {
		entries := c.entries
		c.mu.RUnlock()
		return entries, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loadedAt.IsZero() && time.Since(c.loadedAt) < c.ttl {
		return c.entries, nil
	}

	entries, err := c.source.GetAll(ctx)
	if err != nil {
		// Serve stale entries over failing the search when a refresh breaks.
		if c.entries != nil {
			log.Printf("embedding cache refresh failed, serving stale set: %v", err)
			return c.entries, nil
		}
		return nil, err
	}

	c.entries = entries
	c.loadedAt = time.Now()
	return entries, nil
}

// SearchServiceConfig controls search behavior.
type SearchServiceConfig struct {
	CandidateMultiplier int
}

// SearchService fuses lexical and vector relevance into one ranked list.
type SearchService struct {
	lexical  Scorer
	vector   Scorer
	products ProductResolver
	logs     SearchLogRepository
	cfg      SearchServiceConfig
}

// NewSearchService creates a SearchService. vector may be nil when no query
// encoder is configured; search then degrades to lexical-only ranking. logs
// may be nil to disable search logging.
func NewSearchService(lexical Scorer, vector Scorer, products ProductResolver, logs SearchLogRepository, cfg SearchServiceConfig) *SearchService {
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = defaultCandidateMultiplier
	}
	return &SearchService{
		lexical:  lexical,
		vector:   vector,
		products: products,
		logs:     logs,
		cfg:      cfg,
	}
}

// Search ranks catalog items against a free-text query. Empty and
// whitespace-only queries return an empty result set, not an error.
func (s *SearchService) Search(ctx context.Context, input SearchInput) ([]*SearchResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Search", telemetry.SpanAttributes{
		Operation: "search",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return []*SearchResult{}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	alpha := input.Alpha
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}

	candidateLimit := limit * s.cfg.CandidateMultiplier
	if candidateLimit < minCandidates {
		candidateLimit = minCandidates
	}
	if candidateLimit > maxCandidates {
		candidateLimit = maxCandidates
	}

	started := time.Now()

	lexicalPairs, err := s.lexical.Score(ctx, query, candidateLimit)
	if err != nil {
		return nil, err
	}

	var vectorPairs []ScoredSKU
	if s.vector != nil {
		vectorPairs, err = s.vector.Score(ctx, query, candidateLimit)
		if err != nil {
			return nil, err
		}
	}

	lexicalScores := make(map[string]float64, len(lexicalPairs))
	for _, p := range lexicalPairs {
		lexicalScores[p.SKU] = p.Score
	}
	vectorScores := make(map[string]float64, len(vectorPairs))
	for _, p := range vectorPairs {
		vectorScores[p.SKU] = p.Score
	}

	fused := fuseScores(lexicalScores, vectorScores, alpha)
	if len(fused) > limit {
		fused = fused[:limit]
	}

	results, err := s.resolveProducts(ctx, fused)
	if err != nil {
		return nil, err
	}

	s.logSearch(query, alpha, limit, time.Since(started), results)

	return results, nil
}

// resolveProducts maps fused SKUs to catalog attributes, preserving fusion
// order. An SKU with no catalog row is dropped: that is a catalog-store
// inconsistency, not a search fault.
func (s *SearchService) resolveProducts(ctx context.Context, fused []fusedScore) ([]*SearchResult, error) {
	if len(fused) == 0 {
		return []*SearchResult{}, nil
	}

	skus := make([]string, 0, len(fused))
	for _, f := range fused {
		skus = append(skus, f.SKU)
	}

	products, err := s.products.GetBySKUs(ctx, skus)
	if err != nil {
		return nil, err
	}

	results := make([]*SearchResult, 0, len(fused))
	for _, f := range fused {
		product, ok := products[f.SKU]
		if !ok {
			continue
		}
		results = append(results, &SearchResult{
			SKU:          product.SKU,
			Name:         product.Name,
			Brand:        product.Brand,
			UnitPrice:    product.UnitPrice,
			HybridScore:  f.HybridScore,
			LexicalScore: f.LexicalScore,
			VectorScore:  f.VectorScore,
		})
	}

	return results, nil
}

func (s *SearchService) logSearch(query string, alpha float64, limit int, elapsed time.Duration, results []*SearchResult) {
	if s.logs == nil {
		return
	}

	entry := SearchLogEntry{
		Query:      query,
		Alpha:      alpha,
		Limit:      limit,
		DurationMs: int(elapsed.Milliseconds()),
		Results:    make([]SearchLogResult, 0, len(results)),
	}
	for _, r := range results {
		entry.Results = append(entry.Results, SearchLogResult{SKU: r.SKU, Score: r.HybridScore})
	}

	// Fire and forget; logging must never slow down or fail a search.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := s.logs.CreateSearchLog(ctx, entry); err != nil {
			log.Printf("failed to record search log: %v", err)
		}
	}()
}
