package server

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/picsearch/internal/models"
	"github.com/hyperjump/picsearch/internal/photos"
	"github.com/hyperjump/picsearch/internal/search"
	"go.uber.org/zap"
)

//go:embed index.html
var indexPage []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexPage)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.search(w, r, query.Query)
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	if !params.Has("q") {
		s.respondError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	s.search(w, r, params.Get("q"))
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query string) {
	reqID := middleware.GetReqID(r.Context())
	s.logger.Debug("search request", zap.String("request_id", reqID), zap.String("query", query))

	response, err := s.handler.Search(r.Context(), query)
	if err != nil {
		status := searchErrorStatus(err)
		s.logger.Error("search failed",
			zap.String("request_id", reqID),
			zap.Int("status", status),
			zap.Error(err))
		s.respondError(w, status, err.Error())
		return
	}
	for _, item := range response.Results {
		item.URL = photoURL(item.Name)
	}
	s.respondJSON(w, http.StatusOK, response)
}

func searchErrorStatus(err error) int {
	var encErr *search.EncodingError
	var loadErr *photos.LoadError
	// context errors win over the wrapping error type
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.As(err, &encErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &loadErr):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// photoURL escapes only what the path requires, keeping RawPath empty on the way back in.
func photoURL(name string) string {
	return (&url.URL{Path: "/photos/" + name}).EscapedPath()
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if r.URL.RawPath != "" {
		// chi routed on the escaped path
		unescaped, err := url.PathUnescape(name)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid photo name")
			return
		}
		name = unescaped
	}
	f, err := s.photos.Open(name)
	if err != nil {
		switch {
		case errors.Is(err, photos.ErrInvalidName):
			s.respondError(w, http.StatusBadRequest, "invalid photo name")
		case errors.Is(err, fs.ErrNotExist):
			s.respondError(w, http.StatusNotFound, "photo not found")
		default:
			s.logger.Error("open photo failed", zap.String("name", name), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		s.respondError(w, http.StatusNotFound, "photo not found")
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"corpus_size": s.handler.CorpusSize(),
		"dimensions":  s.handler.Dimensions(),
		"top_k":       s.handler.TopK(),
		"backend":     s.handler.Backend(),
	}

	photoCount, err := s.photos.Count()
	if err != nil {
		s.logger.Warn("status: count photos failed", zap.Error(err))
	} else {
		resp["photo_files"] = photoCount
	}

	configInfo := map[string]interface{}{
		"embeddings_path":   s.config.Corpus.EmbeddingsPath,
		"photos_dir":        s.config.Corpus.PhotosDir,
		"max_concurrent":    s.config.Search.MaxConcurrent,
		"rate_limit":        s.config.Server.RateLimit,
		"embedding_backend": s.config.Embedding.Backend,
	}
	diskBytes, err := photos.DiskUsageBytes(s.config.Corpus.EmbeddingsPath, s.config.Corpus.PhotosDir)
	if err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

// respondJSON encodes into a buffer before writing the header; encode failures become a 500.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		s.logger.Error("encode response failed", zap.Int("status", status), zap.Error(err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
