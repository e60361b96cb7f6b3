package paths

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/yt-download-server/internal/model"
)

// File permissions
const (
	DefaultDirPermissions = 0755
)

// Default bucket names under the platform downloads directory
const (
	VideoBucketName = "Yt_videos"
	AudioBucketName = "Yt_audios"
)

// StagingDirName is the transient work area created under a job's root
const StagingDirName = "_tmp"

// Resolver maps a logical destination request to a safe, creatable
// filesystem root. It never fails: unwritable destinations fall back to
// the internal storage root so that job creation cannot be rejected for
// path reasons alone.
type Resolver struct {
	// StorageDir is the internal storage root used as the last-resort
	// fallback and as the base for relative destination hints.
	StorageDir string

	// DownloadsDir is the platform downloads location hosting the
	// per-media-type default buckets.
	DownloadsDir string
}

// NewResolver creates a resolver rooted at storageDir. The platform
// downloads directory is detected once; when unavailable the storage
// root doubles as the downloads location.
func NewResolver(storageDir string) *Resolver {
	downloads, err := HomeDownloadsDir()
	if err != nil {
		log.Printf("downloads dir unavailable, using storage root: %v", err)
		downloads = storageDir
	}
	return &Resolver{
		StorageDir:   storageDir,
		DownloadsDir: downloads,
	}
}

// Resolve maps an optional user-supplied directory and a media type to an
// absolute, existing directory. Creation failures fall back to the
// storage root; they are logged, never surfaced.
func (r *Resolver) Resolve(userDir string, mediaType model.MediaType) string {
	root := r.target(userDir, mediaType)
	if err := os.MkdirAll(root, DefaultDirPermissions); err != nil {
		log.Printf("cannot create %s, falling back to storage root: %v", root, err)
		root = r.StorageDir
		if err := os.MkdirAll(root, DefaultDirPermissions); err != nil {
			log.Printf("cannot create storage root %s: %v", root, err)
		}
	}
	return root
}

// target applies the resolution rules in order: default bucket when no
// directory is given, verbatim when absolute, under the storage root when
// relative. Relative hints never escape the storage root by construction.
func (r *Resolver) target(userDir string, mediaType model.MediaType) string {
	if userDir == "" {
		if mediaType == model.MediaAudio {
			return filepath.Join(r.DownloadsDir, AudioBucketName)
		}
		return filepath.Join(r.DownloadsDir, VideoBucketName)
	}
	userDir = ExpandHome(userDir)
	if filepath.IsAbs(userDir) {
		return userDir
	}
	return filepath.Join(r.StorageDir, userDir)
}

// EnsureBuckets creates the default buckets and the storage root up
/// front. Best effort: a missing bucket is recreated on first use anyway.
func (r *Resolver) EnsureBuckets() {
	for _, dir := range []string{
		r.StorageDir,
		filepath.Join(r.DownloadsDir, VideoBucketName),
		filepath.Join(r.DownloadsDir, AudioBucketName),
	} {
		if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
			log.Printf("cannot create %s: %v", dir, err)
		}
	}
}

// ExpandHome replaces a leading ~ with the current user's home directory.
// The path is returned unchanged when the home directory is unknown.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// HomeDownloadsDir returns the standard Downloads directory for the user
func HomeDownloadsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "Downloads"), nil
}
