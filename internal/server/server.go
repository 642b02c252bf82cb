// Package server exposes comparison artifacts over HTTP for the
// similarity visualization front end.
//
// Each served corpus directory is addressed by its base name:
//
//	GET /healthz
//	GET /api/corpora
//	GET /api/corpora/{corpus}/diffs
//	GET /api/corpora/{corpus}/vizdata
//	GET /api/corpora/{corpus}/comparisons/{key}
//
// The server only reads files written by "specdiff compare"; it never
// runs a comparison itself.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/specdiff/pkg/batch"
	"github.com/matzehuels/specdiff/pkg/errors"
)

// Server serves the artifacts of one or more corpus directories.
type Server struct {
	corpora map[string]string
	logger  *log.Logger
}

// Corpus describes one served corpus.
type Corpus struct {
	Name     string     `json:"name"`
	Pairs    int        `json:"pairs"`
	Compared bool       `json:"compared"`
	Updated  *time.Time `json:"updated,omitempty"`
}

// New creates a server for dirs. Directory base names must be unique.
func New(dirs []string, logger *log.Logger) (*Server, error) {
	if len(dirs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no corpus directories")
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{corpora: make(map[string]string, len(dirs)), logger: logger}
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return nil, errors.New(errors.ErrCodeDirectoryNotFound, "%s is not a directory", dir)
		}
		name := filepath.Base(filepath.Clean(dir))
		if prev, ok := s.corpora[name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidInput, "corpus name %q used by both %s and %s", name, prev, dir)
		}
		s.corpora[name] = dir
	}
	return s, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/corpora", func(r chi.Router) {
		r.Get("/", s.listCorpora)
		r.Route("/{corpus}", func(r chi.Router) {
			r.Get("/diffs", s.artifact(batch.DiffsFile))
			r.Get("/vizdata", s.artifact(batch.VizFile))
			r.Get("/comparisons/{key}", s.comparison)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) listCorpora(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.corpora))
	for name := range s.corpora {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Corpus, 0, len(names))
	for _, name := range names {
		c := Corpus{Name: name}
		path := filepath.Join(s.corpora[name], batch.DiffsFile)
		if info, err := os.Stat(path); err == nil {
			mod := info.ModTime().UTC()
			c.Updated = &mod
			if diffs, err := batch.ReadDiffs(path); err == nil {
				c.Compared = true
				c.Pairs = len(diffs)
			}
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) artifact(file string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dir, ok := s.corpus(w, r)
		if !ok {
			return
		}
		s.serveFile(w, filepath.Join(dir, file))
	}
}

func (s *Server) comparison(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.corpus(w, r)
	if !ok {
		return
	}
	key := chi.URLParam(r, "key")
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid pair key %q", key))
		return
	}
	s.serveFile(w, filepath.Join(dir, batch.ComparisonFile(key)))
}

func (s *Server) corpus(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := chi.URLParam(r, "corpus")
	dir, ok := s.corpora[name]
	if !ok {
		s.writeError(w, errors.New(errors.ErrCodeDirectoryNotFound, "unknown corpus %q", name))
	}
	return dir, ok
}

func (s *Server) serveFile(w http.ResponseWriter, path string) {
	//nolint:gosec // G304: path is built from a configured directory and a validated name
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.writeError(w, errors.New(errors.ErrCodeFileNotFound, "%s not found", filepath.Base(path)))
			return
		}
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "read %s", filepath.Base(path)))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"took", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errors.GetCode(err)
	switch code {
	case errors.ErrCodeFileNotFound, errors.ErrCodeDirectoryNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	default:
		s.logger.Warn("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
