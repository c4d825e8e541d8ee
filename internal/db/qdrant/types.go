package qdrant

import "encoding/json"

// createCollectionRequest is the body of PUT /collections/{name}.
type createCollectionRequest struct {
	Vectors vectorConfig `json:"vectors"`
}

type vectorConfig struct {
	Size     int    `json:"size"`
	Distance string `json:"distance"` // "Cosine", "Euclid", "Dot"
}

// searchRequest is the body of POST /collections/{name}/points/search.
type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	WithPayload any       `json:"with_payload"` // bool or list of payload keys
}

type searchResponse struct {
	Result []scoredPoint `json:"result"`
	Status any          `json:"status"`
	Time   float64      `json:"time"`
}

// scoredPoint is a search hit. ID is an unsigned integer or a UUID string.
type scoredPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

// errorResponse is the body Qdrant returns with 4xx/5xx statuses.
type errorResponse struct {
	Status struct {
		Error string `json:"error"`
	} `json:"status"`
}
