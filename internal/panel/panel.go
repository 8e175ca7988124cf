package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web/*
var content embed.FS

// Handler returns an http.Handler that serves the monitor page.
//
// When dir names an existing directory, assets are read from disk so the
// page can be edited without rebuilding. Otherwise the embedded copy is
// used. Unknown paths fall back to index.html.
// Panics if the embedded assets cannot be loaded (build error).
func Handler(dir string) http.Handler {
	var fsys fs.FS
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fsys = os.DirFS(dir)
		}
	}
	if fsys == nil {
		web, err := fs.Sub(content, "web")
		if err != nil {
			panic(fmt.Sprintf("panel: loading embedded assets: %v", err))
		}
		fsys = web
	}

	files := http.FileServerFS(fsys)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		name := path.Clean(r.URL.Path)
		if name != "/" && name != "." {
			if _, err := fs.Stat(fsys, name[1:]); err != nil {
				r.URL.Path = "/"
			}
		}
		files.ServeHTTP(w, r)
	})
}
