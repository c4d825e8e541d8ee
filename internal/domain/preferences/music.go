package preferences

import (
	"fmt"
	"strings"
)

// Slider bounds shared by both forms.
const (
	SliderMin = 0
	SliderMax = 100
)

// Trimmed length bounds of the favorite artists field. The upper bound keeps
// the saved preferences inside a single browser cookie.
const (
	MinArtistsLength = 3
	MaxArtistsLength = 500
)

// MusicGenres are the genre options of the music form.
var MusicGenres = []Option{
	{"rock", "Rock"},
	{"pop", "Pop"},
	{"hip-hop", "Hip Hop"},
	{"rnb", "R&B"},
	{"jazz", "Jazz"},
	{"classical", "Classical"},
	{"electronic", "Electronic"},
	{"country", "Country"},
	{"folk", "Folk"},
	{"metal", "Metal"},
	{"blues", "Blues"},
	{"reggae", "Reggae"},
	{"indie", "Indie"},
	{"latin", "Latin"},
	{"kpop", "K-Pop"},
}

// Moods are the mood options of the music form.
var Moods = []Option{
	{"energetic", "Energetic"},
	{"relaxing", "Relaxing"},
	{"happy", "Happy"},
	{"melancholic", "Melancholic"},
	{"romantic", "Romantic"},
	{"focus", "Focus"},
	{"workout", "Workout"},
	{"party", "Party"},
	{"chill", "Chill"},
	{"nostalgic", "Nostalgic"},
}

// Music is the music-specific preference record.
type Music struct {
	GenresPositive    []string `json:"genresPositive"`
	GenresNegative    []string `json:"genresNegative"`
	FavoriteArtists   string   `json:"favoriteArtists"`
	TempoPreference   int      `json:"tempoPreference"`
	MoodPreference    []string `json:"moodPreference"`
	InstrumentalVocal int      `json:"instrumentalVocal"`
}

// DefaultMusic returns the initial form state.
func DefaultMusic() Music {
	return Music{
		TempoPreference:   50,
		InstrumentalVocal: 50,
	}
}

// Normalize trims free-text fields.
func (m *Music) Normalize() {
	m.FavoriteArtists = strings.TrimSpace(m.FavoriteArtists)
}

// Validate checks every field. The returned error is a FieldErrors or nil.
func (m *Music) Validate() error {
	fe := FieldErrors{}
	requireSelection(fe, "genresPositive", m.GenresPositive, MusicGenres, "Please select at least one genre.")
	requireSelection(fe, "genresNegative", m.GenresNegative, MusicGenres, "Please select at least one genre.")
	switch artists := strings.TrimSpace(m.FavoriteArtists); {
	case len(artists) < MinArtistsLength:
		fe["favoriteArtists"] = "Please enter at least one artist."
	case len(artists) > MaxArtistsLength:
		fe["favoriteArtists"] = fmt.Sprintf("Please keep the artist list under %d characters.", MaxArtistsLength)
	}
	requireRange(fe, "tempoPreference", m.TempoPreference, SliderMin, SliderMax)
	requireSelection(fe, "moodPreference", m.MoodPreference, Moods, "Please select at least one mood.")
	requireRange(fe, "instrumentalVocal", m.InstrumentalVocal, SliderMin, SliderMax)
	return fe.orNil()
}
