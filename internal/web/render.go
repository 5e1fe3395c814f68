// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CloudPrep Contributors

package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/samber/oops"
)

//go:embed templates
var templateFS embed.FS

// PageData is the context handed to every page template.
type PageData struct {
	Title        string
	UserLoggedIn bool
	UserEmail    string
	Message      string
	Category     string
	Topic        string
}

// Renderer renders named pages from the embedded template set. Each page
// template is parsed together with the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses all embedded page templates.
func NewRenderer() (*Renderer, error) {
	paths, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, oops.Code("RENDER_PARSE_FAILED").Wrap(err)
	}

	pages := make(map[string]*template.Template)
	for _, p := range paths {
		name := strings.TrimSuffix(path.Base(p), ".html")
		if name == "base" {
			continue
		}
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", p)
		if err != nil {
			return nil, oops.Code("RENDER_PARSE_FAILED").
				With("page", name).
				Wrap(err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages}, nil
}

// Render writes the named page to w with the given status. The body is
// buffered so a template failure never produces a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return oops.Code("RENDER_UNKNOWN_PAGE").
			With("page", page).
			Errorf("no such page template")
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return oops.Code("RENDER_FAILED").
			With("page", page).
			Wrap(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w) //nolint:errcheck // client may disconnect mid-write
	return nil
}
