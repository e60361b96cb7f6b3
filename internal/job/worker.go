package job

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ytget/yt-download-server/internal/media"
	"github.com/ytget/yt-download-server/internal/model"
	"github.com/ytget/yt-download-server/internal/paths"
)

// Terminal messages
const (
	completedMessage = "Completed"
	canceledMessage  = "Canceled"

	// Annotation written after the reconciler has preserved finished items
	canceledSavedMessage = "Canceled: completed items saved to destination."
)

// worker owns one job's lifecycle from queued to a terminal state.
// Exactly one worker exists per job; it is the record's sole writer.
type worker struct {
	id       string
	registry *Registry
	prober   media.Prober
	fetcher  media.Fetcher
}

// run drives the job state machine: authoritative re-probe, destination
// and staging setup, the ordered item loop, and the unconditional
// reconcile on the way out.
func (w *worker) run(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("job %s: worker panic: %v", w.id, rec)
			w.finish(model.StatusError, fmt.Sprintf("Error: %v", rec))
		}
	}()

	j, ok := w.registry.jobCopy(w.id)
	if !ok {
		return
	}
	req := j.Request

	meta, err := w.prober.Probe(ctx, req.SourceURL)
	if err != nil {
		if w.wasCanceled(ctx) {
			w.finish(model.StatusCanceled, canceledMessage)
			return
		}
		w.finish(model.StatusError, "Probe failed: "+err.Error())
		return
	}

	finalDir := j.RootDir
	if meta.Kind == media.KindPlaylist {
		finalDir = filepath.Join(j.RootDir, paths.SafeFolder(meta.Title))
	}
	if err := os.MkdirAll(finalDir, paths.DefaultDirPermissions); err != nil {
		w.finish(model.StatusError, "Error: "+err.Error())
		return
	}
	workDir := filepath.Join(j.RootDir, paths.StagingDirName, w.id)
	if err := os.MkdirAll(workDir, paths.DefaultDirPermissions); err != nil {
		w.finish(model.StatusError, "Error: "+err.Error())
		return
	}

	w.update(func(j *model.Job) {
		j.Status = model.StatusRunning
		j.Kind = meta.Kind
		j.Title = meta.Title
		j.FinalDir = finalDir
		j.Message = "Starting…"
	})

	// Whatever happens next, completed files move to the destination and
	// the staging tree goes away.
	defer func() {
		if err := Reconcile(workDir, finalDir); err != nil {
			log.Printf("job %s: reconcile: %v", w.id, err)
		}
		w.update(func(j *model.Job) {
			if j.Status == model.StatusCanceled {
				j.Message = canceledSavedMessage
			}
		})
	}()

	urls := req.SelectedURLs
	if meta.Kind != media.KindPlaylist || len(urls) == 0 {
		urls = []string{req.SourceURL}
	}
	w.update(func(j *model.Job) {
		j.TotalItems = len(urls)
	})

	if err := w.downloadAll(ctx, urls, req, workDir); err != nil {
		if w.wasCanceled(ctx) || errors.Is(err, context.Canceled) {
			w.finish(model.StatusCanceled, canceledMessage)
			return
		}
		w.finish(model.StatusError, "DownloadError: "+err.Error())
		return
	}

	if w.wasCanceled(ctx) {
		w.finish(model.StatusCanceled, canceledMessage)
		return
	}
	w.finish(model.StatusDone, completedMessage)
}

// downloadAll processes the resolved URL list strictly in order,
// checking for cancellation at the top of each iteration.
func (w *worker) downloadAll(ctx context.Context, urls []string, req model.Request, workDir string) error {
	total := len(urls)
	for i, url := range urls {
		if w.wasCanceled(ctx) {
			return nil
		}

		item := i + 1
		w.update(func(j *model.Job) {
			j.CurrentItem = item
			j.Message = fmt.Sprintf("Downloading item %d/%d…", item, total)
		})

		// Per-item title probe is best effort; a failure leaves the
		// title blank and the item still downloads.
		title := ""
		if meta, err := w.prober.Probe(ctx, url); err == nil {
			title = meta.Title
		}
		w.update(func(j *model.Job) {
			j.CurrentTitle = title
		})

		spec := media.FetchSpec{
			URL:          url,
			MediaType:    req.MediaType,
			Height:       req.VideoHeight,
			AudioBitrate: req.AudioBitrate,
			WorkDir:      workDir,
		}
		if err := w.fetchItem(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

// fetchItem downloads one item, retrying once at best available quality
// when the requested height is not offered.
func (w *worker) fetchItem(ctx context.Context, spec media.FetchSpec) error {
	err := w.fetcher.Fetch(ctx, spec, w.onProgress)
	if err == nil {
		return nil
	}
	if errors.Is(err, media.ErrFormatUnavailable) && spec.Height > 0 {
		w.update(func(j *model.Job) {
			j.Message = fmt.Sprintf("Requested %dp unavailable, falling back to best quality…", spec.Height)
		})
		spec.Height = 0
		return w.fetcher.Fetch(ctx, spec, w.onProgress)
	}
	return err
}

// onProgress is the transfer progress hook. Percent reflects the current
// item's byte progress, not overall job progress; an unknown byte total
// leaves progress unchanged but still flips status to running.
func (w *worker) onProgress(event media.ProgressEvent) {
	switch event.Stage {
	case media.StageDownloading:
		w.update(func(j *model.Job) {
			j.Status = model.StatusRunning
			if event.TotalBytes > 0 {
				j.Progress = float64(event.DownloadedBytes) / float64(event.TotalBytes) * 100
			}
			j.Percent = fmt.Sprintf("%.1f%%", j.Progress)
			j.Speed = humanizeBytesPerSec(event.SpeedBPS)
			j.ETA = humanizeSeconds(event.ETASeconds)
		})
	case media.StageFinished:
		if event.Filename == "" {
			return
		}
		w.update(func(j *model.Job) {
			j.Message = fmt.Sprintf("Processing %s…", filepath.Base(event.Filename))
		})
	}
}

// finish performs the terminal transition, clearing transient fields.
func (w *worker) finish(status model.Status, message string) {
	w.update(func(j *model.Job) {
		j.Status = status
		j.Message = message
		j.Speed = ""
		j.ETA = ""
		if status == model.StatusDone {
			j.Progress = 100
			j.Percent = "100%"
		}
	})
}

func (w *worker) wasCanceled(ctx context.Context) bool {
	return ctx.Err() != nil || w.registry.cancelRequested(w.id)
}

func (w *worker) update(fn func(j *model.Job)) {
	w.registry.update(w.id, fn)
}
