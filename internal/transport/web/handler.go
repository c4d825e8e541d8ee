// Package web serves the HTML search page and the preference forms.
package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pitchsearch/internal/domain"
	"github.com/kailas-cloud/pitchsearch/internal/domain/preferences"
	logpkg "github.com/kailas-cloud/pitchsearch/internal/logger"
	searchuc "github.com/kailas-cloud/pitchsearch/internal/usecase/search"
)

// Handler serves the HTML pages.
type Handler struct {
	search *searchuc.Service
	origin string
	render *renderer
}

// NewHandler creates the page handler. origin qualifies relative review URLs.
func NewHandler(search *searchuc.Service, origin string) (*Handler, error) {
	if origin == "" {
		origin = domain.DefaultReviewOrigin
	}
	r, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{search: search, origin: origin, render: r}, nil
}

// Routes registers the page routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Index)
	r.Get("/search/results", h.Results)
	r.Get("/preferences", h.MusicForm)
	r.Post("/preferences", h.SaveMusic)
	r.Get("/preferences/content", h.ContentForm)
	r.Post("/preferences/content", h.SaveContent)
}

// Index handles GET /. With ?q= the search runs server-side.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	view := indexView{Title: "Pitchfork Review Search", Query: query}
	status := http.StatusOK

	if strings.TrimSpace(query) != "" {
		results, err := h.search.Search(r.Context(), query)
		if err != nil {
			logpkg.FromContext(r.Context()).Error("Search failed", zap.Error(err))
			view.Error = MsgSearchFailed
			status = http.StatusInternalServerError
		} else {
			view.Results = newResultViews(results, strings.TrimSpace(query), h.origin)
		}
	}

	h.page(w, r, status, pageIndex, view)
}

// Results handles GET /search/results and renders only the result list.
// Failures answer with an empty body; the page script shows the message.
func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results, err := h.search.Search(r.Context(), query)
	if err != nil {
		if errors.Is(err, domain.ErrQueryRequired) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		logpkg.FromContext(r.Context()).Error("Search failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if err := h.render.resultList(w, newResultViews(results, strings.TrimSpace(query), h.origin)); err != nil {
		logpkg.FromContext(r.Context()).Error("Render failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// MusicForm handles GET /preferences, prefilled from the saved cookie.
func (h *Handler) MusicForm(w http.ResponseWriter, r *http.Request) {
	form, ok := decodeMusicCookie(r)
	if !ok {
		form = preferences.DefaultMusic()
	}
	h.page(w, r, http.StatusOK, pageMusic, newMusicView(form, nil, false))
}

// SaveMusic handles POST /preferences.
func (h *Handler) SaveMusic(w http.ResponseWriter, r *http.Request) {
	form, err := parseMusicForm(w, r)
	if err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	if errs := fieldErrors(form.Validate()); errs != nil {
		h.page(w, r, http.StatusUnprocessableEntity, pageMusic, newMusicView(form, errs, false))
		return
	}

	cookie, err := encodeMusicCookie(form, r.TLS != nil)
	if errors.Is(err, errCookieTooLarge) {
		errs := preferences.FieldErrors{"favoriteArtists": "Preferences are too large to save."}
		h.page(w, r, http.StatusUnprocessableEntity, pageMusic, newMusicView(form, errs, false))
		return
	}
	if err != nil {
		logpkg.FromContext(r.Context()).Error("Encode preferences failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, cookie)

	logpkg.FromContext(r.Context()).Debug("Music preferences saved",
		zap.Strings("genres_positive", form.GenresPositive),
		zap.Strings("moods", form.MoodPreference),
	)
	h.page(w, r, http.StatusOK, pageMusic, newMusicView(form, nil, true))
}

// ContentForm handles GET /preferences/content.
func (h *Handler) ContentForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, http.StatusOK, pageContent, newContentView(preferences.DefaultContent(), nil, false))
}

// SaveContent handles POST /preferences/content. Valid input is confirmed, not stored.
func (h *Handler) SaveContent(w http.ResponseWriter, r *http.Request) {
	form, err := parseContentForm(w, r)
	if err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	if errs := fieldErrors(form.Validate()); errs != nil {
		h.page(w, r, http.StatusUnprocessableEntity, pageContent, newContentView(form, errs, false))
		return
	}

	logpkg.FromContext(r.Context()).Debug("Content preferences submitted",
		zap.Strings("content_types", form.ContentTypes),
		zap.Strings("genres", form.Genres),
	)
	h.page(w, r, http.StatusOK, pageContent, newContentView(form, nil, true))
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if err := h.render.page(w, status, name, data); err != nil {
		logpkg.FromContext(r.Context()).Error("Render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func fieldErrors(err error) preferences.FieldErrors {
	var fe preferences.FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
