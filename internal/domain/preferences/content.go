package preferences

// ContentTypes are the content type options of the general form.
var ContentTypes = []Option{
	{"movies", "Movies"},
	{"tv", "TV Shows"},
	{"books", "Books"},
	{"music", "Music"},
	{"podcasts", "Podcasts"},
}

// ContentGenres are the genre options of the general form.
var ContentGenres = []Option{
	{"action", "Action"},
	{"adventure", "Adventure"},
	{"comedy", "Comedy"},
	{"drama", "Drama"},
	{"fantasy", "Fantasy"},
	{"horror", "Horror"},
	{"mystery", "Mystery"},
	{"romance", "Romance"},
	{"sci-fi", "Sci-Fi"},
	{"thriller", "Thriller"},
	{"documentary", "Documentary"},
}

// Ratings are the content rating options.
var Ratings = []Option{
	{"all", "All Ratings"},
	{"family", "Family Friendly"},
	{"mature", "Mature Content"},
}

// Timeframes are the release timeframe options.
var Timeframes = []Option{
	{"any", "Any Time"},
	{"new", "New Releases Only"},
	{"recent", "Last 5 Years"},
	{"classic", "Classics (10+ Years)"},
}

// Frequencies are the recommendation update frequency options.
var Frequencies = []Option{
	{"daily", "Daily"},
	{"weekly", "Weekly"},
	{"biweekly", "Bi-weekly"},
	{"monthly", "Monthly"},
}

// Content is the general content preference record.
type Content struct {
	ContentTypes         []string `json:"contentTypes"`
	Genres               []string `json:"genres"`
	ContentRating        string   `json:"contentRating"`
	ReleaseTimeframe     string   `json:"releaseTimeframe"`
	PopularityPreference int      `json:"popularityPreference"`
	DiscoveryMode        bool     `json:"discoveryMode"`
	UpdateFrequency      string   `json:"updateFrequency"`
}

// DefaultContent returns the initial form state.
func DefaultContent() Content {
	return Content{
		ContentTypes:         []string{"movies", "tv"},
		ContentRating:        "all",
		ReleaseTimeframe:     "any",
		PopularityPreference: 50,
		UpdateFrequency:      "weekly",
	}
}

// Validate checks every field. The returned error is a FieldErrors or nil.
func (c *Content) Validate() error {
	fe := FieldErrors{}
	requireSelection(fe, "contentTypes", c.ContentTypes, ContentTypes, "Please select at least one content type.")
	requireSelection(fe, "genres", c.Genres, ContentGenres, "Please select at least one genre.")
	requireChoice(fe, "contentRating", c.ContentRating, Ratings,
		"Please select your preferred content rating.")
	requireChoice(fe, "releaseTimeframe", c.ReleaseTimeframe, Timeframes,
		"Please select your preferred release timeframe.")
	requireRange(fe, "popularityPreference", c.PopularityPreference, SliderMin, SliderMax)
	requireChoice(fe, "updateFrequency", c.UpdateFrequency, Frequencies,
		"Please select how often you'd like to receive recommendations.")
	return fe.orNil()
}
