package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrArchiverNotFound is returned when the archiver executable cannot be started.
var ErrArchiverNotFound = errors.New("archiver executable not found")

// SevenZip runs an external 7-Zip compatible executable: <Path> x <archive> -o<dir> -y.
type SevenZip struct {
	Path string
}

// NewSevenZip returns a SevenZip for path, "7z" when empty.
func NewSevenZip(path string) *SevenZip {
	if path == "" {
		path = "7z"
	}
	return &SevenZip{Path: path}
}

func (s *SevenZip) Name() string { return "7z" }

// Extract runs the archiver. The process is killed when ctx is cancelled.
func (s *SevenZip) Extract(ctx context.Context, path, dir string) error {
	cmd := exec.CommandContext(ctx, s.Path, "x", path, "-o"+dir, "-y")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: %q (install 7-Zip or set ARCHIVER_PATH)", ErrArchiverNotFound, s.Path)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s x %s: %w", s.Path, path, err)
		}
		return fmt.Errorf("%s x %s: %w: %s", s.Path, path, err, msg)
	}
	return nil
}
