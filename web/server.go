// Package web serves the board as an HTML page plus a small JSON API.
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ka2n/csvboard/api"
	"github.com/ka2n/csvboard/log"
	"github.com/morikuni/failure/v2"
	"github.com/samber/lo"
)

// DefaultTitle is the page heading.
const DefaultTitle = "CSV Dashboard"

// Server serves the board. The board can be swapped while serving.
type Server struct {
	Title string

	board atomic.Pointer[api.Board]
	mux   *http.ServeMux
}

// NewServer creates a server for b.
func NewServer(b *api.Board) *Server {
	s := &Server{Title: DefaultTitle, mux: http.NewServeMux()}
	s.board.Store(b)

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/sources", s.handleSources)
	s.mux.HandleFunc("GET /download/{id}", s.handleDownload)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return s
}

// SetBoard replaces the board used by subsequent requests.
func (s *Server) SetBoard(b *api.Board) {
	s.board.Store(b)
}

// Board returns the current board.
func (s *Server) Board() *api.Board {
	return s.board.Load()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	panels := s.Board().Build(r.Context())

	data := pageData{
		Title:   s.Title,
		Version: api.Version,
		Panels: lo.Map(panels, func(p api.Panel, _ int) panelView {
			v := panelView{
				ID:          p.ID,
				Title:       p.Title,
				File:        p.File,
				URL:         p.URL,
				DownloadURL: "/download/" + p.ID,
				LastUpdated: p.LastUpdated,
				FetchedAt:   p.FetchedAt,
			}
			if p.Err != nil {
				v.Error = errorMessage(p.Err)
			} else if p.Table != nil {
				v.Header = p.Table.Header
				v.Rows = p.Table.Rows
			}
			return v
		}),
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		log.Error("Failed to render page", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// sourceInfo is the JSON shape of /api/sources entries.
type sourceInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	File        string `json:"file"`
	URL         string `json:"url"`
	LastUpdated string `json:"last_updated"`
	Signal      string `json:"signal"`
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	panels := s.Board().Labels(r.Context())
	out := lo.Map(panels, func(p api.Panel, _ int) sourceInfo {
		return sourceInfo{
			ID:          p.ID,
			Title:       p.Title,
			File:        p.File,
			URL:         p.URL,
			LastUpdated: p.LastUpdated,
			Signal:      string(p.Tier),
		}
	})

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Warn("Failed to write sources response", "error", err)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	b := s.Board()
	src, err := b.Source(r.PathValue("id"))
	if err != nil {
		http.Error(w, errorMessage(err), http.StatusNotFound)
		return
	}
	http.Redirect(w, r, b.FileURL(src), http.StatusFound)
}

// errorMessage prefers the user-facing failure message.
func errorMessage(err error) string {
	if msg := failure.MessageOf(err); msg != "" {
		return msg.String()
	}
	return err.Error()
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Serving board", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return failure.Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("Shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return failure.Wrap(err)
	}
	return nil
}
