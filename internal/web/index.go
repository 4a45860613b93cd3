package web

import "net/http"

// NewIndexHandler renders the site root.
func NewIndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		render(w, "index.html", newPage(r, "Welcome"))
	}
}
