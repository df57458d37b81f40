// Package audio validates finalized recording artifacts before they are
// stored. Checks are limited to existence, size bounds, and extension;
// codec-level validity is deferred to playback.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact size bounds. Anything below the floor is a capture that never
// produced real audio; anything above the ceiling is not a voice memo.
const (
	MinArtifactBytes = 100
	MaxArtifactBytes = 50 << 20 // 50 MiB
)

var allowedExtensions = map[string]struct{}{
	".m4a": {},
	".mp3": {},
	".wav": {},
	".aac": {},
	".mp4": {},
	".mov": {},
}

// Filesystem is the collaborator the validator consults for artifact metadata.
type Filesystem interface {
	Stat(uri string) (exists bool, sizeBytes int64, err error)
}

// OSFilesystem implements Filesystem over the local filesystem.
type OSFilesystem struct{}

func (OSFilesystem) Stat(uri string) (bool, int64, error) {
	info, err := os.Stat(uri)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, info.Size(), nil
}

// Result is the validator's structured verdict.
type Result struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func reject(reason string) Result {
	return Result{Valid: false, Reason: reason}
}

// Validate checks a candidate artifact URI. It fails closed: any condition
// that cannot be confirmed is a rejection. It never returns an error.
func Validate(fs Filesystem, uri string) Result {
	if strings.TrimSpace(uri) == "" {
		return reject("empty artifact uri")
	}

	ext := strings.ToLower(filepath.Ext(uri))
	if _, ok := allowedExtensions[ext]; !ok {
		return reject(fmt.Sprintf("unsupported extension %q", ext))
	}

	exists, size, err := fs.Stat(uri)
	if err != nil {
		return reject(fmt.Sprintf("stat failed: %v", err))
	}
	if !exists {
		return reject("artifact does not exist")
	}
	if size < MinArtifactBytes {
		return reject(fmt.Sprintf("artifact too small (%d bytes)", size))
	}
	if size > MaxArtifactBytes {
		return reject(fmt.Sprintf("artifact too large (%d bytes)", size))
	}

	return Result{Valid: true}
}
