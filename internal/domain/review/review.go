// Package review holds the externally owned music review record returned by the vector store.
package review

import "strings"

// Review is the payload attached to every indexed vector. The service never mutates it.
type Review struct {
	Title     string
	Artists   string
	Body      string
	Score     float64 // review score, 0-10
	ReviewURL string
}

// New creates a review payload.
func New(title, artists, body string, score float64, reviewURL string) Review {
	return Review{
		Title:     title,
		Artists:   artists,
		Body:      body,
		Score:     score,
		ReviewURL: reviewURL,
	}
}

// FullURL qualifies a relative review URL against origin.
// Absolute http(s) URLs pass through unchanged; an empty URL yields "#".
func FullURL(origin, reviewURL string) string {
	if reviewURL == "" {
		return "#"
	}
	if strings.HasPrefix(reviewURL, "http") {
		return reviewURL
	}
	origin = strings.TrimSuffix(origin, "/")
	if !strings.HasPrefix(reviewURL, "/") {
		reviewURL = "/" + reviewURL
	}
	return origin + reviewURL
}

// Link returns the review URL qualified against origin.
func (r *Review) Link(origin string) string {
	return FullURL(origin, r.ReviewURL)
}
