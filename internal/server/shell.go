package server

import (
	"io/fs"
	"net/http"
	"strings"
)

// shellServer serves the built browser shell: the iframe page producer
// sites embed, plus its scripts. Embed paths like /video/ep-1/ and
// /livestream/weta/ all resolve to the shell entry page, which reads
// its configuration from the query string and dials the session
// socket.
type shellServer struct {
	fileServer http.Handler
	fileSystem fs.FS
}

func newShellServer(fsys fs.FS) *shellServer {
	return &shellServer{
		fileServer: http.FileServer(http.FS(fsys)),
		fileSystem: fsys,
	}
}

func (s *shellServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	if path == "" {
		path = "index.html"
	}

	if _, err := fs.Stat(s.fileSystem, path); err != nil {
		r.URL.Path = "/"
	}

	s.fileServer.ServeHTTP(w, r)
}
