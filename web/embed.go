// Package web embeds the page template and stylesheet served by the form.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageTemplate parses the embedded page. It panics on a malformed template,
// which can only happen at build time.
func PageTemplate() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/index.html"))
}

// StaticHandler serves embedded assets; mount it under /static/.
func StaticHandler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(subFS)))
}
