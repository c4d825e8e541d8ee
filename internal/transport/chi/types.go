package chi

import (
	"github.com/kailas-cloud/pitchsearch/internal/domain/search/result"
)

// searchRequest is the POST /api/search body. Query is a pointer to tell
// a missing field from an empty one in logs; both are rejected.
type searchRequest struct {
	Query *string `json:"query"`
}

type searchResponse struct {
	Result []searchResultItem `json:"result"`
}

type searchResultItem struct {
	ID      string        `json:"id"`
	Score   float64       `json:"score"`
	Payload reviewPayload `json:"payload"`
}

type reviewPayload struct {
	Title     string  `json:"title"`
	Artists   string  `json:"artists"`
	Body      string  `json:"body"`
	Score     float64 `json:"score"`
	ReviewURL string  `json:"review_url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func searchResultToDTO(r *result.Result) searchResultItem {
	rv := r.Review()
	return searchResultItem{
		ID:    r.ID(),
		Score: r.Score(),
		Payload: reviewPayload{
			Title:     rv.Title,
			Artists:   rv.Artists,
			Body:      rv.Body,
			Score:     rv.Score,
			ReviewURL: rv.ReviewURL,
		},
	}
}
