// Package web embeds the dashboard page template and its static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/fitcoach/internal/view"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html.tmpl"))

// RenderDashboard writes the dashboard page for v.
// The page is rendered into a buffer first so a template error never leaves
// a half-written response.
func RenderDashboard(w io.Writer, v view.DashboardView) error {
	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, v); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// StaticHandler serves the embedded assets. Mount it with the /static/
// prefix stripped.
func StaticHandler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" || strings.HasSuffix(path, "/") {
			http.NotFound(w, r)
			return
		}

		f, err := subFS.Open(path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if closeErr := f.Close(); closeErr != nil {
			slog.Debug("web: failed to close embedded file", "path", path, "error", closeErr)
		}
		fileServer.ServeHTTP(w, r)
	})
}
