package media

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-download-server/internal/model"
)

// Engine defaults
const (
	DefaultProgressInterval = 500 * time.Millisecond

	// OutputTemplate names downloaded files after the source title
	OutputTemplate = "%(title)s.%(ext)s"

	// AudioCodecMP3 is the conversion target for audio jobs
	AudioCodecMP3 = "mp3"
)

// Marker emitted by the engine when a format selector matches nothing
const formatUnavailableMarker = "Requested format is not available"

// Engine is the yt-dlp backed implementation of Prober and Fetcher.
type Engine struct {
	progressInterval time.Duration
}

// NewEngine creates a new download engine adapter
func NewEngine() *Engine {
	return &Engine{
		progressInterval: DefaultProgressInterval,
	}
}

// SetProgressInterval sets how often transfer progress is reported
func (e *Engine) SetProgressInterval(interval time.Duration) {
	e.progressInterval = interval
}

// Probe extracts metadata for a URL without downloading. Playlist URLs
// take the flat listing fast path first; anything else, or a failed fast
// path, runs a full metadata dump.
func (e *Engine) Probe(ctx context.Context, url string) (*ProbeResult, error) {
	if id := PlaylistID(url); id != "" {
		if result, err := e.probePlaylistFlat(ctx, url, id); err == nil {
			return result, nil
		}
		// fall through to the full dump; private or mixed URLs can
		// still resolve as a single video
	}

	info, err := e.dumpInfo(ctx, url)
	if err != nil {
		return nil, err
	}
	return e.probeResultFromInfo(ctx, info), nil
}

// Fetch downloads and converts one item into spec.WorkDir.
func (e *Engine) Fetch(ctx context.Context, spec FetchSpec, progress func(ProgressEvent)) error {
	dl := ytdlp.New().
		ForceOverwrites().
		Format(FormatString(spec.MediaType, spec.Height)).
		Output(filepath.Join(spec.WorkDir, OutputTemplate))

	if spec.MediaType == model.MediaAudio {
		dl = dl.ExtractAudio().AudioFormat(AudioCodecMP3)
		if spec.AudioBitrate != "" && spec.AudioBitrate != model.AudioBitrateBest {
			dl = dl.AudioQuality(spec.AudioBitrate)
		}
	}

	if progress != nil {
		dl.ProgressFunc(e.progressInterval, func(update ytdlp.ProgressUpdate) {
			progress(toProgressEvent(update))
		})
	}

	if _, err := dl.Run(ctx, spec.URL); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if strings.Contains(err.Error(), formatUnavailableMarker) {
			return ErrFormatUnavailable
		}
		return err
	}
	return nil
}

// dumpInfo runs a metadata-only extraction and decodes its JSON output.
func (e *Engine) dumpInfo(ctx context.Context, url string) (*rawInfo, error) {
	dl := ytdlp.New().
		SkipDownload().
		DumpSingleJSON()

	result, err := dl.Run(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrProbeUnavailable, err)
	}

	var info rawInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}
	return &info, nil
}

// probeResultFromInfo converts a raw metadata dump into the shape the
// job engine consumes. A dump with entries is a playlist; its available
// heights come from a best-effort probe of the first entry.
func (e *Engine) probeResultFromInfo(ctx context.Context, info *rawInfo) *ProbeResult {
	result := &ProbeResult{
		Kind:      KindVideo,
		Title:     info.displayTitle(),
		Thumbnail: info.Thumbnail,
		CanAudio:  true,
	}

	if len(info.Entries) == 0 {
		result.AvailableHeights = heightsFromFormats(info.Formats)
		if len(result.AvailableHeights) > 0 {
			result.DefaultHeight = result.AvailableHeights[0]
		}
		return result
	}

	result.Kind = KindPlaylist
	for i, entry := range info.Entries {
		url := entry.URL
		if url == "" {
			url = entry.WebpageURL
		}
		if url == "" {
			continue
		}
		title := entry.Title
		if title == "" {
			title = fmt.Sprintf("Item %d", i+1)
		}
		result.Entries = append(result.Entries, Entry{
			Index:    i + 1,
			ID:       entry.ID,
			Title:    title,
			URL:      url,
			Duration: entry.duration(),
		})
	}

	if len(result.Entries) > 0 {
		if first, err := e.dumpInfo(ctx, result.Entries[0].URL); err == nil {
			result.AvailableHeights = heightsFromFormats(first.Formats)
			if len(result.AvailableHeights) > 0 {
				result.DefaultHeight = result.AvailableHeights[0]
			}
		}
	}
	return result
}

// rawInfo is the subset of a yt-dlp metadata dump this server reads.
type rawInfo struct {
	Type           string      `json:"_type"`
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Thumbnail      string      `json:"thumbnail"`
	URL            string      `json:"url"`
	WebpageURL     string      `json:"webpage_url"`
	Duration       json.Number `json:"duration"`
	DurationString string      `json:"duration_string"`
	Formats        []rawFormat `json:"formats"`
	Entries        []rawInfo   `json:"entries"`
}

type rawFormat struct {
	Height json.Number `json:"height"`
	VCodec string      `json:"vcodec"`
}

func (r *rawInfo) displayTitle() string {
	if r.Title == "" {
		return "Untitled"
	}
	return r.Title
}

func (r *rawInfo) duration() string {
	if r.DurationString != "" {
		return r.DurationString
	}
	if secs, err := r.Duration.Int64(); err == nil && secs > 0 {
		return formatDuration(int(secs))
	}
	return ""
}

// formatDuration formats seconds into HH:MM:SS format
func formatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// heightsFromFormats lists the distinct heights of real video formats,
// highest first. Audio-only formats report vcodec "none" and are skipped.
func heightsFromFormats(formats []rawFormat) []int {
	seen := make(map[int]bool)
	var heights []int
	for _, f := range formats {
		if f.VCodec == "" || f.VCodec == "none" {
			continue
		}
		h, err := f.Height.Int64()
		if err != nil || h <= 0 {
			continue
		}
		if !seen[int(h)] {
			seen[int(h)] = true
			heights = append(heights, int(h))
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(heights)))
	return heights
}

// toProgressEvent converts an engine progress update into the local
// callback shape consumed by job workers.
func toProgressEvent(update ytdlp.ProgressUpdate) ProgressEvent {
	event := ProgressEvent{
		Stage:           StageDownloading,
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		ETASeconds:      -1,
	}
	if update.Status == ytdlp.ProgressStatusFinished {
		event.Stage = StageFinished
	}
	if !update.Started.IsZero() {
		if elapsed := time.Since(update.Started).Seconds(); elapsed > 0 {
			event.SpeedBPS = float64(update.DownloadedBytes) / elapsed
		}
	}
	if eta := update.ETA(); eta > 0 {
		event.ETASeconds = int(eta.Seconds())
	}
	if update.Info != nil && update.Info.Filename != nil {
		event.Filename = *update.Info.Filename
	}
	return event
}
