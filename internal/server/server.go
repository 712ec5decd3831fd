package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/Shoji0121/voice-remove/internal/auth"
	"github.com/Shoji0121/voice-remove/internal/blob"
	"github.com/Shoji0121/voice-remove/internal/wizard"
)

func Handler(staticFS fs.FS, hub *Hub, wiz *wizard.Wizard, journal Journal, blobs BlobGetter, google *auth.Google) http.Handler {
	mux := http.NewServeMux()

	registerWSRoute(mux, hub)
	registerAPIRoutes(mux, wiz, journal, blobs, google)

	fileServer := http.FileServer(http.FS(staticFS))
	mux.HandleFunc("/", serveSPA(fileServer))

	return mux
}

func serveSPA(fileServer http.Handler) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") ||
			strings.HasPrefix(r.URL.Path, blob.PathPrefix) ||
			r.URL.Path == "/ws" {
			http.NotFound(w, r)
			return
		}

		cleanPath := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))
		if cleanPath == "." || cleanPath == "" {
			r.URL.Path = "/"
		} else if !strings.Contains(cleanPath, ".") {
			r.URL.Path = "/index.html"
		} else {
			r.URL.Path = "/" + cleanPath
		}

		fileServer.ServeHTTP(w, r)
	}
}
