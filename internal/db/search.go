package db

import "github.com/kailas-cloud/pitchsearch/internal/domain"

// ScoreKind tells how SearchEntry.Score must be read.
type ScoreKind int

const (
	// ScoreSimilarity means higher is closer.
	ScoreSimilarity ScoreKind = iota
	// ScoreDistance means lower is closer.
	ScoreDistance
)

func (k ScoreKind) String() string {
	if k == ScoreDistance {
		return "distance"
	}
	return "similarity"
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	Collection   string
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total     int
	ScoreKind ScoreKind
	Entries   []SearchEntry
}

// SearchEntry is a single hit. Payload is nil when the backend returned none.
type SearchEntry struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// KeyPrefix returns the hash key prefix of a collection's records.
func KeyPrefix(collection string) string {
	return domain.KeyPrefix + collection + ":"
}
