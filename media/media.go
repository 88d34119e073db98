// Package media loads reference images from disk or uploads, encodes them
// for transport and writes generated covers back out.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/petal-labs/coverkit/core"
)

// MaxAttachmentBytes caps a single reference image. Gemini rejects inline
// payloads above roughly 20 MB.
const MaxAttachmentBytes = 20 << 20

var (
	// ErrNotImage means the content sniffed as something other than image/*.
	ErrNotImage = errors.New("not an image")

	// ErrTooLarge means the file exceeds MaxAttachmentBytes.
	ErrTooLarge = errors.New("image too large")
)

// Info describes a validated image.
type Info struct {
	MimeType string
	Format   string
	Width    int
	Height   int
}

// Inspect sniffs data and reads its image header. Only image/* content is
// accepted, and png, jpeg, gif and webp headers must decode.
func Inspect(data []byte) (Info, error) {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return Info{}, fmt.Errorf("%w: detected %s", ErrNotImage, mimeType)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			// Sniffed as an image but no decoder is registered (bmp, ico).
			return Info{MimeType: mimeType}, nil
		}
		return Info{}, fmt.Errorf("%w: %s header: %v", ErrNotImage, mimeType, err)
	}

	return Info{
		MimeType: mimeType,
		Format:   format,
		Width:    cfg.Width,
		Height:   cfg.Height,
	}, nil
}

// Read loads an attachment from r. filename is kept for display only.
func Read(r io.Reader, filename string) (*core.Attachment, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxAttachmentBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if len(data) > MaxAttachmentBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", filename, ErrTooLarge, MaxAttachmentBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w: empty file", filename, ErrNotImage)
	}

	info, err := Inspect(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return &core.Attachment{
		Data:     data,
		MimeType: info.MimeType,
		Filename: filename,
	}, nil
}

// Load reads an attachment from a file path.
func Load(path string) (*core.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, filepath.Base(path))
}

// LoadArtifact reads an existing image file as the current artifact for
// an edit.
func LoadArtifact(path string) (core.Artifact, error) {
	att, err := Load(path)
	if err != nil {
		return core.Artifact{}, err
	}
	return core.ArtifactFromBytes(att.MimeType, att.Data), nil
}
