package server

import (
	"bytes"
	"net/http"
)

// keyFunc derives the cache prefix for a request, typically from a path
// parameter.
type keyFunc func(r *http.Request) string

type recordingWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	rw.buf.Write(p)
	return rw.ResponseWriter.Write(p)
}

// cached serves a GET handler through the response cache. A hit replays the
// stored envelope bytes; a 200 response is stored under prefix plus request
// URI, so prefix invalidation on the write path forces the next read through.
func (s *Server) cached(prefix keyFunc, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := prefix(r) + ":" + r.URL.RequestURI()

		if body, ok := s.cache.Get(key); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
			return
		}

		rw := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		handler(rw, r)

		if rw.status == http.StatusOK {
			s.cache.Set(key, rw.buf.Bytes(), 0)
		}
	}
}
