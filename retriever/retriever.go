package retriever

import (
	"context"
	"log/slog"

	"github.com/imkonsowa/places-chat/models"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

const (
	DefaultK = 5

	// QueryScoreThreshold is the minimum similarity for a past query to count as a match.
	QueryScoreThreshold = 0.7
)

type Corpus interface {
	ListPlaces(ctx context.Context) ([]models.Place, error)
	ListQueryLogs(ctx context.Context) ([]models.QueryLog, error)
}

type Retriever struct {
	corpus   Corpus
	embedder embeddings.Embedder
}

func New(corpus Corpus, embedder embeddings.Embedder) *Retriever {
	return &Retriever{
		corpus:   corpus,
		embedder: embedder,
	}
}

// IndexPlaces embeds the description of every stored place into a fresh index.
func (r *Retriever) IndexPlaces(ctx context.Context) (*MemoryStore, error) {
	places, err := r.corpus.ListPlaces(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, len(places))
	for i := range places {
		docs[i] = schema.Document{
			PageContent: places[i].DocumentText(),
			Metadata:    map[string]any{"place_id": places[i].PlaceID},
		}
	}

	return r.index(ctx, docs)
}

func (r *Retriever) RetrieveSimilarPlaces(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultK
	}

	index, err := r.IndexPlaces(ctx)
	if err != nil {
		return nil, err
	}

	docs, err := index.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, err
	}

	return pageContents(docs), nil
}

// FindSimilarQueries returns up to k past queries scoring at least QueryScoreThreshold against query.
func (r *Retriever) FindSimilarQueries(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultK
	}

	logs, err := r.corpus.ListQueryLogs(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, len(logs))
	for i := range logs {
		docs[i] = schema.Document{PageContent: logs[i].Stringify()}
	}

	index, err := r.index(ctx, docs)
	if err != nil {
		return nil, err
	}

	relevant := vectorstores.ToRetriever(index, k, vectorstores.WithScoreThreshold(QueryScoreThreshold))
	matches, err := relevant.GetRelevantDocuments(ctx, query)
	if err != nil {
		return nil, err
	}

	slog.Info("similar queries", "query", query, "corpus", len(docs), "matches", len(matches))

	return pageContents(matches), nil
}

func (r *Retriever) index(ctx context.Context, docs []schema.Document) (*MemoryStore, error) {
	index := NewMemoryStore(r.embedder)
	if _, err := index.AddDocuments(ctx, docs); err != nil {
		return nil, err
	}

	return index, nil
}

func pageContents(docs []schema.Document) []string {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	return texts
}
