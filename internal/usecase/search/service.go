package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
	"github.com/kailas-cloud/pitchsearch/internal/domain/search/request"
	"github.com/kailas-cloud/pitchsearch/internal/domain/search/result"
	"github.com/kailas-cloud/pitchsearch/internal/metrics"
)

// Service runs semantic search over the reviews collection.
type Service struct {
	repo  Repository
	embed Embedder
	topK  int
}

// New creates a search service. topK <= 0 means request.DefaultTopK.
func New(repo Repository, embed Embedder, topK int) *Service {
	return &Service{repo: repo, embed: embed, topK: topK}
}

// Search embeds the query and returns the nearest reviews, best first.
// The result is never nil. Blank queries fail with domain.ErrQueryRequired.
func (s *Service) Search(ctx context.Context, query string) ([]result.Result, error) {
	req, err := request.New(query, s.topK)
	if err != nil {
		return nil, err
	}

	embResult, err := s.embed.Embed(ctx, req.Query())
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	domain.UsageFromContext(ctx).AddTokens(embResult.TotalTokens)

	results, err := s.repo.SearchKNN(ctx, embResult.Embedding, req.TopK())
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	if results == nil {
		results = []result.Result{}
	}
	if len(results) > req.TopK() {
		results = results[:req.TopK()]
	}

	metrics.SearchResultsCount.Observe(float64(len(results)))
	return results, nil
}
