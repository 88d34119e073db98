package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/petal-labs/coverkit/core"
)

// imageExtensions maps the media types the service returns to file
// extensions. Anything else is saved as .png.
var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DownloadName returns the file name a cover of the given media type is
// saved under: cover-<unix-ms> plus the type's extension.
func DownloadName(t time.Time, mimeType string) string {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(mimeType))]
	if !ok {
		ext = ".png"
	}
	return fmt.Sprintf("cover-%d%s", t.UnixMilli(), ext)
}

// SaveArtifact decodes a and writes it into dir as DownloadName(now, a.MimeType).
// dir is created if missing. It returns the written path.
func SaveArtifact(dir string, a core.Artifact, now time.Time) (string, error) {
	if a.IsZero() {
		return "", core.ErrNoArtifact
	}
	data, err := a.Bytes()
	if err != nil {
		return "", fmt.Errorf("decode artifact: %w", err)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, DownloadName(now, a.MimeType))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}
	return path, nil
}
