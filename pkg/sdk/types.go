package pitchsearch

import (
	"github.com/kailas-cloud/pitchsearch/internal/domain/review"
	"github.com/kailas-cloud/pitchsearch/internal/domain/search/result"
)

// Review is the music review attached to a search hit.
type Review struct {
	Title     string  `json:"title"`
	Artists   string  `json:"artists"`
	Body      string  `json:"body"`
	Score     float64 `json:"score"`
	ReviewURL string  `json:"review_url"`
}

// Result is a single search hit. Score is a similarity in [0,1].
type Result struct {
	ID     string  `json:"id"`
	Score  float64 `json:"score"`
	Review Review  `json:"payload"`

	origin string
}

// Percent returns the similarity as a percentage with two decimals.
func (r *Result) Percent() string { return result.Percent(r.Score) }

// Link returns the review URL qualified against the client's review origin.
func (r *Result) Link() string { return review.FullURL(r.origin, r.Review.ReviewURL) }

// HealthStatus is the aggregated server health.
type HealthStatus struct {
	Status string            `json:"status"` // "ok", "degraded", "error"
	Checks map[string]string `json:"checks"` // component -> "ok"/"error"
}

// OK reports whether every component is healthy.
func (h HealthStatus) OK() bool { return h.Status == "ok" }

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Result []Result `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}
