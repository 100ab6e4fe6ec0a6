package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dgallion1/templext/internal/pipeline"
	"github.com/dgallion1/templext/internal/report"
	"github.com/dgallion1/templext/internal/resolve"
	"github.com/go-chi/chi/v5"
)

// handlePreview resolves a page under the site root on the fly. Other files
// are served as-is.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	rel, ok := s.sitePath(chi.URLParam(r, "*"))
	if !ok {
		jsonError(w, "page not found", http.StatusNotFound)
		return
	}
	file := filepath.Join(s.cfg.SiteRoot, filepath.FromSlash(rel))
	if info, err := os.Stat(file); err == nil && info.IsDir() {
		rel = path.Join(rel, "index.html")
		file = filepath.Join(file, "index.html")
	}

	if !s.isPage(rel) {
		http.ServeFile(w, r, file)
		return
	}
	data, err := os.ReadFile(file)
	if err != nil {
		jsonError(w, "page not found", http.StatusNotFound)
		return
	}

	res, err := s.orchestrator.Processor().Process(r.Context(), pipeline.Unit{Path: file, Contents: data}, report.NewLogger(s.log.With("path", rel)))
	if err != nil {
		s.log.Error("preview failed", "path", rel, "error", err)
		jsonError(w, err.Error(), resolveErrorStatus(err))
		return
	}

	ctype := mime.TypeByExtension(filepath.Ext(file))
	if ctype == "" {
		ctype = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("X-Templext-Warnings", fmt.Sprintf("%d", len(res.Warnings)))
	w.Write(res.Contents)
}

// handleResolve resolves an uploaded document as if it lived at the given
// path under the site root.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	virtual := r.FormValue("path")
	if virtual == "" {
		virtual = sanitizeFilename(header.Filename)
	}
	rel, ok := s.sitePath(virtual)
	if !ok || rel == "" {
		jsonError(w, "invalid path", http.StatusBadRequest)
		return
	}

	unit := pipeline.Unit{Path: filepath.Join(s.cfg.SiteRoot, filepath.FromSlash(rel)), Contents: data}
	res, err := s.orchestrator.Processor().Process(r.Context(), unit, report.NewLogger(s.log.With("path", rel)))
	if err != nil {
		s.log.Error("resolve failed", "path", rel, "error", err)
		jsonError(w, err.Error(), resolveErrorStatus(err))
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"path":        rel,
		"contents":    string(res.Contents),
		"warnings":    warnings,
		"states":      res.States,
		"duration_ms": res.Duration.Milliseconds(),
	})
}

// sitePath cleans a request path into a slash-separated path relative to the
// site root. Paths through ignored segments are rejected.
func (s *Server) sitePath(p string) (string, bool) {
	rel := strings.TrimPrefix(path.Clean("/"+p), "/")
	if rel == "" {
		return "", true
	}
	for _, seg := range strings.Split(rel, "/") {
		for _, pattern := range s.cfg.Ignore {
			if ok, _ := path.Match(pattern, seg); ok {
				return "", false
			}
		}
	}
	return rel, true
}

func (s *Server) isPage(rel string) bool {
	ext := strings.ToLower(path.Ext(rel))
	for _, e := range s.cfg.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

func resolveErrorStatus(err error) int {
	switch {
	case errors.Is(err, resolve.ErrCycle):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrStreamingUnsupported):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
