package web

import (
	"strconv"

	"github.com/kailas-cloud/pitchsearch/internal/domain/highlight"
	"github.com/kailas-cloud/pitchsearch/internal/domain/preferences"
	"github.com/kailas-cloud/pitchsearch/internal/domain/search/result"
)

// MsgSearchFailed is shown when a search cannot be completed.
const MsgSearchFailed = "Failed to perform search. Please try again."

type resultView struct {
	Title       string
	Artists     string
	ReviewScore string
	Excerpt     highlight.Excerpt
	Percent     string
	Link        string
}

type indexView struct {
	Title   string
	Query   string
	Results []resultView
	Error   string
}

type musicView struct {
	Title    string
	Form     preferences.Music
	Errors   preferences.FieldErrors
	Saved    bool
	Genres   []preferences.Option
	Moods    []preferences.Option
	Min, Max int
}

type contentView struct {
	Title        string
	Form         preferences.Content
	Errors       preferences.FieldErrors
	Saved        bool
	ContentTypes []preferences.Option
	Genres       []preferences.Option
	Ratings      []preferences.Option
	Timeframes   []preferences.Option
	Frequencies  []preferences.Option
	Min, Max     int
}

func newResultViews(results []result.Result, query, origin string) []resultView {
	views := make([]resultView, len(results))
	for i := range results {
		r := &results[i]
		rv := r.Review()
		views[i] = resultView{
			Title:       rv.Title,
			Artists:     rv.Artists,
			ReviewScore: strconv.FormatFloat(rv.Score, 'f', -1, 64),
			Excerpt:     highlight.Build(rv.Body, query),
			Percent:     r.Percent(),
			Link:        rv.Link(origin),
		}
	}
	return views
}

func newMusicView(form preferences.Music, errs preferences.FieldErrors, saved bool) musicView {
	return musicView{
		Title:  "Music Preferences",
		Form:   form,
		Errors: errs,
		Saved:  saved,
		Genres: preferences.MusicGenres,
		Moods:  preferences.Moods,
		Min:    preferences.SliderMin,
		Max:    preferences.SliderMax,
	}
}

func newContentView(form preferences.Content, errs preferences.FieldErrors, saved bool) contentView {
	return contentView{
		Title:        "Recommendation Preferences",
		Form:         form,
		Errors:       errs,
		Saved:        saved,
		ContentTypes: preferences.ContentTypes,
		Genres:       preferences.ContentGenres,
		Ratings:      preferences.Ratings,
		Timeframes:   preferences.Timeframes,
		Frequencies:  preferences.Frequencies,
		Min:          preferences.SliderMin,
		Max:          preferences.SliderMax,
	}
}
