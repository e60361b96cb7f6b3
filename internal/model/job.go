package model

// MediaType selects the output kind of a job
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// Valid returns true for the two supported media types
func (m MediaType) Valid() bool {
	return m == MediaVideo || m == MediaAudio
}

// AudioBitrateBest requests the encoder default instead of a fixed bitrate
const AudioBitrateBest = "best"

// Request holds the immutable parameters of a submitted job
type Request struct {
	SourceURL    string
	MediaType    MediaType
	VideoHeight  int    // 0 means best available
	AudioBitrate string // e.g. "192", or "best"
	SelectedURLs []string
	OutputDir    string // optional destination hint
}

// Job is the mutable lifecycle record for one download request. It is
// mutated only by its owning worker; everyone else reads snapshots.
type Job struct {
	ID      string
	Request Request

	Status   Status
	Progress float64 // percent of the current item, 0..100
	Percent  string  // display projection of Progress
	Speed    string  // human readable throughput
	ETA      string  // human readable remaining time
	Message  string

	Kind         string // "video" or "playlist", known after the worker probe
	Title        string
	CurrentItem  int // 1-based index into the resolved URL list
	TotalItems   int
	CurrentTitle string

	RootDir  string // resolved once at creation
	FinalDir string // resolved once the kind is known

	CancelRequested bool // write-once, checked at worker checkpoints
	Created         int64
}

// Snapshot is the wire representation of a Job.
type Snapshot struct {
	JobID        string    `json:"jobId"`
	URL          string    `json:"url"`
	MediaType    MediaType `json:"mediaType"`
	VideoHeight  int       `json:"videoHeight"`
	AudioBitrate string    `json:"audioBitrate"`
	SelectedURLs []string  `json:"selectedUrls"`
	RootDir      string    `json:"rootDir"`
	FinalDir     string    `json:"finalDir"`
	Status       Status    `json:"status"`
	Progress     float64   `json:"progress"`
	Percent      string    `json:"percent"`
	ETA          string    `json:"eta"`
	Speed        string    `json:"speed"`
	Message      string    `json:"message"`
	Kind         string    `json:"kind"`
	Title        string    `json:"title"`
	CurrentItem  int       `json:"currentItem"`
	TotalItems   int       `json:"totalItems"`
	CurrentTitle string    `json:"currentTitle"`
	Created      int64     `json:"created"`
}

// Snapshot returns a detached copy of the job in its wire shape
func (j *Job) Snapshot() Snapshot {
	selected := make([]string, len(j.Request.SelectedURLs))
	copy(selected, j.Request.SelectedURLs)

	return Snapshot{
		JobID:        j.ID,
		URL:          j.Request.SourceURL,
		MediaType:    j.Request.MediaType,
		VideoHeight:  j.Request.VideoHeight,
		AudioBitrate: j.Request.AudioBitrate,
		SelectedURLs: selected,
		RootDir:      j.RootDir,
		FinalDir:     j.FinalDir,
		Status:       j.Status,
		Progress:     j.Progress,
		Percent:      j.Percent,
		ETA:          j.ETA,
		Speed:        j.Speed,
		Message:      j.Message,
		Kind:         j.Kind,
		Title:        j.Title,
		CurrentItem:  j.CurrentItem,
		TotalItems:   j.TotalItems,
		CurrentTitle: j.CurrentTitle,
		Created:      j.Created,
	}
}
