package request

import (
	"strings"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
)

// Search parameter limits.
const (
	DefaultTopK = 10
	MaxTopK     = 100
)

// Request is a validated search query.
type Request struct {
	query string
	topK  int
}

// New validates and normalizes search parameters.
// The query is trimmed and has no length bound; topK <= 0 falls back to DefaultTopK and is clamped to MaxTopK.
func New(query string, topK int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, domain.ErrQueryRequired
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	return Request{query: query, topK: topK}, nil
}

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// TopK returns the number of nearest neighbours to retrieve.
func (r *Request) TopK() int { return r.topK }
