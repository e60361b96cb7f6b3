package media

import (
	"fmt"

	"github.com/ytget/yt-download-server/internal/model"
)

// Format selectors understood by the download engine
const (
	FormatBestAudio = "bestaudio/best"
	FormatBestVideo = "bv*+ba/b"
)

// FormatString builds the engine format selector for a media type and an
// optional height constraint (0 means best available).
func FormatString(mediaType model.MediaType, height int) string {
	if mediaType == model.MediaAudio {
		return FormatBestAudio
	}
	if height <= 0 {
		return FormatBestVideo
	}
	return fmt.Sprintf("bv*[height=%d]+ba/b[height=%d]", height, height)
}
