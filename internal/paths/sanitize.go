package paths

import (
	"regexp"
	"strings"
)

// FallbackFolderName is used when a title sanitizes down to nothing
const FallbackFolderName = "Untitled"

// Characters that are unsafe in folder names on at least one platform
var unsafeFolderChars = regexp.MustCompile(`[\\/:*?"<>|]+`)

// SafeFolder turns an arbitrary title into a valid folder name. Runs of
// unsafe characters collapse into a single underscore; empty or
// whitespace-only titles fall back to a fixed placeholder.
func SafeFolder(name string) string {
	cleaned := strings.TrimSpace(unsafeFolderChars.ReplaceAllString(name, "_"))
	if cleaned == "" {
		return FallbackFolderName
	}
	return cleaned
}
