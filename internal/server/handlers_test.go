package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ytget/yt-download-server/internal/job"
	"github.com/ytget/yt-download-server/internal/media"
	"github.com/ytget/yt-download-server/internal/model"
	"github.com/ytget/yt-download-server/internal/paths"
)

type proberFunc func(ctx context.Context, url string) (*media.ProbeResult, error)

func (f proberFunc) Probe(ctx context.Context, url string) (*media.ProbeResult, error) {
	return f(ctx, url)
}

type fetcherFunc func(ctx context.Context, spec media.FetchSpec, progress func(media.ProgressEvent)) error

func (f fetcherFunc) Fetch(ctx context.Context, spec media.FetchSpec, progress func(media.ProgressEvent)) error {
	return f(ctx, spec, progress)
}

func newTestServer(t *testing.T, prober media.Prober, fetcher media.Fetcher) *Server {
	t.Helper()
	resolver := &paths.Resolver{
		StorageDir:   filepath.Join(t.TempDir(), "storage"),
		DownloadsDir: filepath.Join(t.TempDir(), "Downloads"),
	}
	registry := job.NewRegistry(resolver, prober, fetcher)
	return New(registry, prober, 10*time.Millisecond)
}

func okProber(title string) proberFunc {
	return func(ctx context.Context, url string) (*media.ProbeResult, error) {
		return &media.ProbeResult{Kind: media.KindVideo, Title: title, CanAudio: true}, nil
	}
}

func okFetcher(name string) fetcherFunc {
	return func(ctx context.Context, spec media.FetchSpec, progress func(media.ProgressEvent)) error {
		progress(media.ProgressEvent{Stage: media.StageDownloading, DownloadedBytes: 50, TotalBytes: 100, ETASeconds: 2})
		return os.WriteFile(filepath.Join(spec.WorkDir, name), []byte("media"), 0644)
	}
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleProbe_MissingURL(t *testing.T) {
	s := newTestServer(t, okProber("clip"), okFetcher("clip.mp4"))
	rec := postJSON(t, s.Router(), "/api/probe", `{"url":"   "}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["error"] != "Missing url" {
		t.Errorf("error = %q, want %q", body["error"], "Missing url")
	}
}

func TestHandleProbe_Unavailable(t *testing.T) {
	prober := proberFunc(func(ctx context.Context, url string) (*media.ProbeResult, error) {
		return nil, fmt.Errorf("probe %s: %w", url, media.ErrProbeUnavailable)
	})
	s := newTestServer(t, prober, okFetcher("clip.mp4"))
	rec := postJSON(t, s.Router(), "/api/probe", `{"url":"https://example.com/watch?v=gone"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandleProbe_OK(t *testing.T) {
	prober := proberFunc(func(ctx context.Context, url string) (*media.ProbeResult, error) {
		return &media.ProbeResult{
			Kind:             media.KindVideo,
			Title:            "Some Clip",
			AvailableHeights: []int{1080, 720},
			DefaultHeight:    1080,
			CanAudio:         true,
		}, nil
	})
	s := newTestServer(t, prober, okFetcher("clip.mp4"))
	rec := postJSON(t, s.Router(), "/api/probe", `{"url":"https://example.com/watch?v=abc"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var result media.ProbeResult
	decodeBody(t, rec, &result)
	if result.Kind != media.KindVideo || result.Title != "Some Clip" {
		t.Errorf("unexpected probe result: %+v", result)
	}
	if len(result.AvailableHeights) != 2 {
		t.Errorf("AvailableHeights = %v, want two entries", result.AvailableHeights)
	}
}

func TestHandleCreateJob_Validation(t *testing.T) {
	s := newTestServer(t, okProber("clip"), okFetcher("clip.mp4"))
	router := s.Router()

	for name, body := range map[string]string{
		"empty url":     `{"url":"","mediaType":"video"}`,
		"bad mediaType": `{"url":"https://example.com/v","mediaType":"gif"}`,
		"not json":      `{`,
	} {
		rec := postJSON(t, router, "/api/jobs", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestHandleJob_Lifecycle(t *testing.T) {
	s := newTestServer(t, okProber("My Clip"), okFetcher("clip.mp4"))
	router := s.Router()

	rec := postJSON(t, router, "/api/jobs", `{"url":"https://example.com/watch?v=abc","mediaType":"video","videoHeight":720}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status = %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]string
	decodeBody(t, rec, &created)
	id := created["jobId"]
	if len(id) != job.JobIDLength {
		t.Fatalf("jobId = %q, want %d hex chars", id, job.JobIDLength)
	}

	snap := waitForTerminal(t, router, id)
	if snap.Status != model.StatusDone {
		t.Fatalf("status = %s, want done (message=%q)", snap.Status, snap.Message)
	}
	if snap.Title != "My Clip" {
		t.Errorf("title = %q, want %q", snap.Title, "My Clip")
	}

	// Cancel after completion is acknowledged but changes nothing.
	req := httptest.NewRequest(http.MethodDelete, "/api/jobs/"+id, nil)
	del := httptest.NewRecorder()
	router.ServeHTTP(del, req)
	if del.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d", del.Code)
	}
	after := waitForTerminal(t, router, id)
	if after.Status != model.StatusDone {
		t.Errorf("status after cancel = %s, want done", after.Status)
	}
}

func TestHandleJob_UnknownID(t *testing.T) {
	s := newTestServer(t, okProber("clip"), okFetcher("clip.mp4"))
	router := s.Router()

	get := httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, get)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get: status = %d, want 404", rec.Code)
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/jobs/nope", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, del)
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete: status = %d, want 404", rec.Code)
	}
}

func TestHandleStream_UnknownID(t *testing.T) {
	s := newTestServer(t, okProber("clip"), okFetcher("clip.mp4"))

	req := httptest.NewRequest(http.MethodGet, "/api/stream/nope", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", got)
	}
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("body = %q, want an error event", rec.Body.String())
	}
}

func TestHandleStream_FeedEndsAtTerminal(t *testing.T) {
	s := newTestServer(t, okProber("Streamed Clip"), okFetcher("clip.mp4"))
	router := s.Router()

	rec := postJSON(t, router, "/api/jobs", `{"url":"https://example.com/watch?v=abc","mediaType":"video"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("create: status = %d", rec.Code)
	}
	var created map[string]string
	decodeBody(t, rec, &created)

	req := httptest.NewRequest(http.MethodGet, "/api/stream/"+created["jobId"], nil)
	stream := httptest.NewRecorder()
	router.ServeHTTP(stream, req) // returns once the feed closes

	var last model.Snapshot
	frames := 0
	scanner := bufio.NewScanner(stream.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		frames++
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &last); err != nil {
			t.Fatalf("bad frame %q: %v", line, err)
		}
	}
	if frames == 0 {
		t.Fatal("no data frames received")
	}
	if last.Status != model.StatusDone {
		t.Errorf("final frame status = %s, want done", last.Status)
	}
	if last.Percent != "100%" {
		t.Errorf("final frame percent = %q, want 100%%", last.Percent)
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t, okProber("clip"), okFetcher("clip.mp4"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

// waitForTerminal polls the job endpoint until the job settles.
func waitForTerminal(t *testing.T, router http.Handler, id string) model.Snapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	var snap model.Snapshot
	for time.Now().Before(deadline) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("get job: status = %d", rec.Code)
		}
		decodeBody(t, rec, &snap)
		if snap.Status.IsTerminal() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal status, last=%s", id, snap.Status)
	return model.Snapshot{}
}
