package media

import (
	"context"
	"errors"

	"github.com/ytget/yt-download-server/internal/model"
)

// Source kinds reported by a probe
const (
	KindVideo    = "video"
	KindPlaylist = "playlist"
)

// Entry is one item of a probed playlist
type Entry struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	Duration string `json:"duration,omitempty"`
}

// ProbeResult is the metadata shape the job engine consumes
type ProbeResult struct {
	Kind             string  `json:"kind"`
	Title            string  `json:"title"`
	AvailableHeights []int   `json:"availableHeights"`
	DefaultHeight    int     `json:"defaultHeight,omitempty"`
	CanAudio         bool    `json:"canAudio"`
	Thumbnail        string  `json:"thumbnail,omitempty"`
	Entries          []Entry `json:"entries,omitempty"`
}

// Stage identifies the phase a progress event belongs to
type Stage string

const (
	// StageDownloading carries byte counters for the current item
	StageDownloading Stage = "downloading"

	// StageFinished means the item's transfer ended and post-processing begins
	StageFinished Stage = "finished"
)

// ProgressEvent mirrors the engine's transfer callbacks. A zero
// TotalBytes means the total is unknown; ETASeconds is -1 when unknown.
type ProgressEvent struct {
	Stage           Stage
	DownloadedBytes int64
	TotalBytes      int64
	SpeedBPS        float64
	ETASeconds      int
	Filename        string
}

// FetchSpec describes one item transfer into a private work directory
type FetchSpec struct {
	URL          string
	MediaType    model.MediaType
	Height       int // 0 means best available
	AudioBitrate string
	WorkDir      string
}

// Prober extracts metadata from a source URL without transferring media.
type Prober interface {
	Probe(ctx context.Context, url string) (*ProbeResult, error)
}

// Fetcher downloads and converts a single item into spec.WorkDir,
// reporting progress through the callback. Cancelling ctx aborts the
// transfer; the returned error is then ctx.Err().
type Fetcher interface {
	Fetch(ctx context.Context, spec FetchSpec, progress func(ProgressEvent)) error
}

var (
	// ErrProbeUnavailable means the source is unreachable, private, or
	// needs authentication
	ErrProbeUnavailable = errors.New("video or playlist unavailable")

	// ErrFormatUnavailable means the requested quality is not offered
	ErrFormatUnavailable = errors.New("requested format is not available")
)
