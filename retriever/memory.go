package retriever

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

var ErrNoEmbedder = errors.New("memory store: no embedder configured")

// MemoryStore is an in-memory vector index scored by cosine similarity.
// It is built per request and never persisted.
type MemoryStore struct {
	embedder embeddings.Embedder
	docs     []schema.Document
	vectors  [][]float32
}

var _ vectorstores.VectorStore = (*MemoryStore)(nil)

func NewMemoryStore(embedder embeddings.Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

func (s *MemoryStore) Len() int {
	return len(s.docs)
}

func (s *MemoryStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	embedder, err := s.embedderFor(options)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = strconv.Itoa(len(s.docs))
		s.docs = append(s.docs, doc)
		s.vectors = append(s.vectors, vectors[i])
	}

	return ids, nil
}

// SimilaritySearch returns up to numDocuments documents ordered by descending score.
// With a score threshold set, documents scoring below it are dropped.
func (s *MemoryStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if len(s.docs) == 0 || numDocuments <= 0 {
		return []schema.Document{}, nil
	}

	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	embedder, err := s.embedderFor(options)
	if err != nil {
		return nil, err
	}

	queryVector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	scored := make([]schema.Document, 0, len(s.docs))
	for i, doc := range s.docs {
		score := cosineSimilarity(queryVector, s.vectors[i])
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		doc.Score = score
		scored = append(scored, doc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > numDocuments {
		scored = scored[:numDocuments]
	}

	return scored, nil
}

func (s *MemoryStore) embedderFor(options []vectorstores.Option) (embeddings.Embedder, error) {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Embedder != nil {
		return opts.Embedder, nil
	}
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}

	return s.embedder, nil
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
