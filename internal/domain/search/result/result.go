package result

import (
	"math"
	"strconv"

	"github.com/kailas-cloud/pitchsearch/internal/domain/review"
)

// Result is a single search hit. Score is always a similarity in [0,1].
type Result struct {
	id     string
	score  float64
	review review.Review
}

// New creates a search result. The score is clamped to [0,1].
func New(id string, score float64, r review.Review) Result {
	return Result{id: id, score: ClampSimilarity(score), review: r}
}

// ID returns the vector store's opaque identifier.
func (r *Result) ID() string { return r.id }

// Score returns the similarity in [0,1].
func (r *Result) Score() float64 { return r.score }

// Review returns the review payload.
func (r *Result) Review() review.Review { return r.review }

// Percent returns the similarity as a percentage with two decimals.
func (r *Result) Percent() string { return Percent(r.score) }

// SimilarityFromDistance converts a distance (cosine, L2) into a similarity bounded to [0,1].
func SimilarityFromDistance(d float64) float64 {
	return ClampSimilarity(1 - d)
}

// ClampSimilarity bounds s to [0,1]. NaN maps to 0.
func ClampSimilarity(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// Percent formats a similarity as "NN.NN", bounded to [0,100].
func Percent(similarity float64) string {
	return strconv.FormatFloat(ClampSimilarity(similarity)*100, 'f', 2, 64)
}
