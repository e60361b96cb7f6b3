package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ytget/yt-download-server/internal/media"
	"github.com/ytget/yt-download-server/internal/model"
)

type probeRequest struct {
	URL string `json:"url"`
}

type createJobRequest struct {
	URL          string          `json:"url"`
	MediaType    model.MediaType `json:"mediaType"`
	VideoHeight  int             `json:"videoHeight"`
	AudioBitrate string          `json:"audioBitrate"`
	SelectedURLs []string        `json:"selectedUrls"`
	OutputDir    string          `json:"outputDir"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProbe(w http.ResponseWriter, r *http.Request) {
	var req probeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	url := strings.TrimSpace(req.URL)
	if url == "" {
		writeError(w, http.StatusBadRequest, "Missing url")
		return
	}

	result, err := s.prober.Probe(r.Context(), url)
	if err != nil {
		if errors.Is(err, media.ErrProbeUnavailable) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := s.registry.Create(model.Request{
		SourceURL:    strings.TrimSpace(req.URL),
		MediaType:    req.MediaType,
		VideoHeight:  req.VideoHeight,
		AudioBitrate: req.AudioBitrate,
		SelectedURLs: req.SelectedURLs,
		OutputDir:    req.OutputDir,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"jobId": id})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.registry.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	if !s.registry.Cancel(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleStream pushes a change-only snapshot feed over server-sent
// events. The stream ends after the terminal snapshot or when the
// client disconnects.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	id := chi.URLParam(r, "id")
	if _, found := s.registry.Get(id); !found {
		fmt.Fprint(w, "event: error\ndata: {}\n\n")
		flusher.Flush()
		return
	}

	for snap := range s.registry.Watch(r.Context(), id, s.streamInterval) {
		data, err := json.Marshal(snap)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
