package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed templates static
var assetsFS embed.FS

// staticHandler serves the embedded widget script and stylesheet under
// /static/.
func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(assetsFS, "static")
	if err != nil {
		// The static directory is embedded at build time; a failure here
		// is a packaging bug.
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
