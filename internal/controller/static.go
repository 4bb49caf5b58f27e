package controller

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticHandler serves the front-end bundle from dir: "/" is index.html,
// any other path is the file of that name. Directories, dotfiles and config
// files are never served.
func StaticHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		if name == "/" {
			name = "/index.html"
		}

		if hidden(name) {
			http.NotFound(w, r)
			return
		}

		file := filepath.Join(dir, filepath.FromSlash(name))
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, file)
	})
}

// hidden reports whether a cleaned URL path names something that may hold
// secrets: any dot-prefixed segment, or a config.* file.
func hidden(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return strings.HasPrefix(strings.ToLower(path.Base(name)), "config.")
}
