package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/yt-download-server/internal/media"
	"github.com/ytget/yt-download-server/internal/model"
	"github.com/ytget/yt-download-server/internal/paths"
)

// JobIDLength is the number of hex characters in a job identifier
const JobIDLength = 12

// Cancel request message shown while the worker winds down
const cancelRequestedMessage = "Cancel requested…"

type record struct {
	job    model.Job
	cancel context.CancelFunc
}

// Registry is the single source of truth for job state. Each job record
// is mutated only by its owning worker; handlers and feeds read
// snapshots, and cancellation writes one monotonic flag. Instances are
// independent, so tests can run isolated registries.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*record

	resolver *paths.Resolver
	prober   media.Prober
	fetcher  media.Fetcher
}

// NewRegistry creates an empty registry wired to its collaborators.
func NewRegistry(resolver *paths.Resolver, prober media.Prober, fetcher media.Fetcher) *Registry {
	return &Registry{
		jobs:     make(map[string]*record),
		resolver: resolver,
		prober:   prober,
		fetcher:  fetcher,
	}
}

// Create validates the request, allocates a job record with a resolved
// root directory, and launches the job's worker. It returns as soon as
// the record exists; callers never block on download progress.
func (r *Registry) Create(req model.Request) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}
	if req.AudioBitrate == "" {
		req.AudioBitrate = model.AudioBitrateBest
	}

	id := newJobID()
	root := r.resolver.Resolve(req.OutputDir, req.MediaType)
	ctx, cancel := context.WithCancel(context.Background())

	j := model.Job{
		ID:      id,
		Request: req,
		Status:  model.StatusQueued,
		Percent: "0%",
		RootDir: root,
		Created: time.Now().Unix(),
	}

	r.mu.Lock()
	r.jobs[id] = &record{job: j, cancel: cancel}
	r.mu.Unlock()

	w := &worker{
		id:       id,
		registry: r,
		prober:   r.prober,
		fetcher:  r.fetcher,
	}
	go w.run(ctx)

	return id, nil
}

// Get returns the current snapshot of a job.
func (r *Registry) Get(id string) (model.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.jobs[id]
	if !ok {
		return model.Snapshot{}, false
	}
	return rec.job.Snapshot(), true
}

// Cancel requests cooperative cancellation of a job. It reports false
// only for unknown ids; cancelling an already-terminal job is a no-op
// that leaves the record untouched.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()
	rec, ok := r.jobs[id]
	if !ok {
		r.mu.Unlock()
		return false
	}
	if rec.job.Status.IsTerminal() {
		r.mu.Unlock()
		return true
	}
	if !rec.job.CancelRequested {
		rec.job.CancelRequested = true
		rec.job.Message = cancelRequestedMessage
	}
	cancel := rec.cancel
	r.mu.Unlock()

	cancel()
	return true
}

// update applies fn to a job under the registry lock. It is used only by
// the job's owning worker. Status writes that would leave a terminal
// state are dropped, which makes terminal states final by construction.
func (r *Registry) update(id string, fn func(j *model.Job)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.jobs[id]
	if !ok {
		return
	}
	prev := rec.job.Status
	fn(&rec.job)
	if rec.job.Status != prev && !prev.CanTransitionTo(rec.job.Status) {
		rec.job.Status = prev
	}
}

// jobCopy returns a detached copy of the full record for worker reads.
func (r *Registry) jobCopy(id string) (model.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.jobs[id]
	if !ok {
		return model.Job{}, false
	}
	j := rec.job
	j.Request.SelectedURLs = append([]string(nil), j.Request.SelectedURLs...)
	return j, true
}

// cancelRequested reads the monotonic cancellation flag.
func (r *Registry) cancelRequested(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.jobs[id]
	return ok && rec.job.CancelRequested
}

func validate(req model.Request) error {
	if strings.TrimSpace(req.SourceURL) == "" {
		return errors.New("missing url")
	}
	if !req.MediaType.Valid() {
		return fmt.Errorf("invalid media type %q", req.MediaType)
	}
	if req.VideoHeight < 0 {
		return fmt.Errorf("invalid video height %d", req.VideoHeight)
	}
	return nil
}

// newJobID generates a short opaque job identifier
func newJobID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:JobIDLength]
}
