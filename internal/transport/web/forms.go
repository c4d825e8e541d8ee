package web

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/pitchsearch/internal/domain/preferences"
)

// PreferencesCookie stores the saved music preferences on the client.
const PreferencesCookie = "preferences"

const (
	cookieMaxAge  = 365 * 24 * time.Hour
	maxCookieSize = 4096 // name=value limit browsers honor
	maxFormSize   = 64 << 10
)

var errCookieTooLarge = errors.New("preferences cookie too large")

func parseMusicForm(w http.ResponseWriter, r *http.Request) (preferences.Music, error) {
	if err := parseForm(w, r); err != nil {
		return preferences.Music{}, err
	}
	m := preferences.Music{
		GenresPositive:    r.PostForm["genresPositive"],
		GenresNegative:    r.PostForm["genresNegative"],
		FavoriteArtists:   r.PostForm.Get("favoriteArtists"),
		TempoPreference:   formInt(r, "tempoPreference"),
		MoodPreference:    r.PostForm["moodPreference"],
		InstrumentalVocal: formInt(r, "instrumentalVocal"),
	}
	m.Normalize()
	return m, nil
}

func parseContentForm(w http.ResponseWriter, r *http.Request) (preferences.Content, error) {
	if err := parseForm(w, r); err != nil {
		return preferences.Content{}, err
	}
	return preferences.Content{
		ContentTypes:         r.PostForm["contentTypes"],
		Genres:               r.PostForm["genres"],
		ContentRating:        r.PostForm.Get("contentRating"),
		ReleaseTimeframe:     r.PostForm.Get("releaseTimeframe"),
		PopularityPreference: formInt(r, "popularityPreference"),
		DiscoveryMode:        formBool(r, "discoveryMode"),
		UpdateFrequency:      r.PostForm.Get("updateFrequency"),
	}, nil
}

func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// formInt returns -1 for a missing or non-numeric value so range validation rejects it.
func formInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.PostForm.Get(name)))
	if err != nil {
		return -1
	}
	return v
}

func formBool(r *http.Request, name string) bool {
	switch r.PostForm.Get(name) {
	case "on", "true", "1":
		return true
	}
	return false
}

func encodeMusicCookie(m preferences.Music, secure bool) (*http.Cookie, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	value := base64.RawURLEncoding.EncodeToString(data)
	if len(PreferencesCookie)+1+len(value) > maxCookieSize {
		return nil, fmt.Errorf("%d bytes: %w", len(value), errCookieTooLarge)
	}
	return &http.Cookie{
		Name:     PreferencesCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// decodeMusicCookie returns the saved preferences, or false when the cookie is
// absent or unreadable.
func decodeMusicCookie(r *http.Request) (preferences.Music, bool) {
	c, err := r.Cookie(PreferencesCookie)
	if err != nil {
		return preferences.Music{}, false
	}
	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return preferences.Music{}, false
	}
	var m preferences.Music
	if err := json.Unmarshal(data, &m); err != nil {
		return preferences.Music{}, false
	}
	return m, true
}
