package media

import (
	"context"
	"fmt"
	"strings"

	ytget "github.com/ytget/ytdlp/v2"
)

// URL parameters and separators
const (
	PlaylistParam  = "list="
	ParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title heuristics
const (
	MinPrefixLength = 10
	PlaylistSuffix  = " Playlist"
)

// PlaylistID extracts the playlist ID from various URL formats; an empty
// result means the URL does not reference a playlist.
func PlaylistID(url string) string {
	if !strings.Contains(url, PlaylistParam) {
		return ""
	}
	parts := strings.Split(url, PlaylistParam)
	if len(parts) < 2 {
		return ""
	}
	id := parts[1]
	if strings.Contains(id, ParamSeparator) {
		id = strings.Split(id, ParamSeparator)[0]
	}
	return id
}

// probePlaylistFlat lists playlist items without resolving each entry,
// which keeps probes of large playlists fast.
func (e *Engine) probePlaylistFlat(ctx context.Context, url, playlistID string) (*ProbeResult, error) {
	d := ytget.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("flat playlist probe: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("playlist %s has no items", playlistID)
	}

	result := &ProbeResult{
		Kind:     KindPlaylist,
		CanAudio: true,
	}
	for i, item := range items {
		result.Entries = append(result.Entries, Entry{
			Index: i + 1,
			ID:    item.VideoID,
			Title: item.Title,
			URL:   fmt.Sprintf(YouTubeVideoURLTemplate, item.VideoID),
		})
	}
	result.Title = playlistTitle(result.Entries)

	// Heights come from the first entry, best effort
	if info, err := e.dumpInfo(ctx, result.Entries[0].URL); err == nil {
		result.AvailableHeights = heightsFromFormats(info.Formats)
		if len(result.AvailableHeights) > 0 {
			result.DefaultHeight = result.AvailableHeights[0]
		}
	}
	return result, nil
}

// playlistTitle derives a display title from entry titles: a long shared
// prefix across the first two entries, or the first title, with a
// playlist suffix either way.
func playlistTitle(entries []Entry) string {
	if len(entries) == 0 {
		return "Unknown" + PlaylistSuffix
	}
	if len(entries) > 1 {
		prefix := commonPrefix(entries[0].Title, entries[1].Title)
		if len(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

// commonPrefix finds the common prefix between two strings
func commonPrefix(s1, s2 string) string {
	minLen := min(len(s1), len(s2))
	for i := 0; i < minLen; i++ {
		if s1[i] != s2[i] {
			return s1[:i]
		}
	}
	return s1[:minLen]
}
