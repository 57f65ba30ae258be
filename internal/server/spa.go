package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
)

// handleSPA serves the built viewer/announcer frontend from dir, falling
// back to index.html for client-side routes. Unknown paths that look like
// files still 404.
func handleSPA(dir string) http.HandlerFunc {
	root := os.DirFS(dir)
	fileServer := http.FileServerFS(root)

	return func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)[1:]
		if name == "" {
			name = "."
		}

		info, err := fs.Stat(root, name)
		switch {
		case err == nil && !info.IsDir():
			fileServer.ServeHTTP(w, r)
		case errors.Is(err, fs.ErrNotExist) && path.Ext(name) != "":
			http.NotFound(w, r)
		default:
			http.ServeFileFS(w, r, root, "index.html")
		}
	}
}
