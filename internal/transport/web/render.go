package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"slices"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	pageIndex   = "index"
	pageMusic   = "music"
	pageContent = "content"
)

var funcs = template.FuncMap{
	"has": func(values []string, id string) bool { return slices.Contains(values, id) },
}

type renderer struct {
	pages   map[string]*template.Template
	results *template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, 3)}
	for _, page := range []string{pageIndex, pageMusic, pageContent} {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/results.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", page, err)
		}
		r.pages[page] = t
	}

	results, err := template.New("results").Funcs(funcs).ParseFS(templateFS, "templates/results.html")
	if err != nil {
		return nil, fmt.Errorf("parse results template: %w", err)
	}
	r.results = results
	return r, nil
}

// page renders a full page into a buffer first so a template error never
// produces a half-written 200.
func (r *renderer) page(w http.ResponseWriter, status int, name string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	writeHTML(w, status, buf.Bytes())
	return nil
}

func (r *renderer) resultList(w http.ResponseWriter, results []resultView) error {
	var buf bytes.Buffer
	if err := r.results.ExecuteTemplate(&buf, "results", results); err != nil {
		return fmt.Errorf("render results: %w", err)
	}
	writeHTML(w, http.StatusOK, buf.Bytes())
	return nil
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
