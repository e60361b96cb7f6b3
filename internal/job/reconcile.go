package job

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ytget/yt-download-server/internal/paths"
)

// Suffixes of temporary artifacts the engine leaves next to in-flight
// downloads; these never reach the final destination.
var stagingSkipSuffixes = []string{".part", ".ytdl"}

// Reconcile moves every completed file from workDir into finalDir,
// preserving subfolder structure and disambiguating name collisions,
// then removes the staging tree including any leftover partial files.
// It is idempotent: a missing or empty workDir is a no-op.
func Reconcile(workDir, finalDir string) error {
	if workDir == "" || finalDir == "" {
		return nil
	}
	if _, err := os.Stat(workDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(finalDir, paths.DefaultDirPermissions); err != nil {
		return err
	}

	walkErr := filepath.WalkDir(workDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isStagingArtifact(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(workDir, path)
		if err != nil {
			return err
		}
		dst := uniqueDst(filepath.Join(finalDir, rel))
		if err := os.MkdirAll(filepath.Dir(dst), paths.DefaultDirPermissions); err != nil {
			return err
		}
		return moveFile(path, dst)
	})

	if rmErr := os.RemoveAll(workDir); rmErr != nil && walkErr == nil {
		walkErr = rmErr
	}
	return walkErr
}

// isStagingArtifact reports whether a file is a temporary in-progress
// artifact that must not be reconciled.
func isStagingArtifact(name string) bool {
	for _, suffix := range stagingSkipSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// uniqueDst returns dst, or dst with a numeric disambiguator before the
// extension when the name is already taken.
func uniqueDst(dst string) string {
	if _, err := os.Stat(dst); os.IsNotExist(err) {
		return dst
	}
	ext := filepath.Ext(dst)
	base := strings.TrimSuffix(dst, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// moveFile renames src to dst, falling back to copy-then-delete when the
// rename fails (e.g. across devices).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Source removal is best effort; the staging tree is deleted as a
	// whole afterwards anyway.
	_ = os.Remove(src)
	return nil
}
