package core

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Artifact is a generated image held as base64 text. The zero value means
// no image has been produced yet.
type Artifact struct {
	MimeType string
	data     string
}

// NewArtifact wraps base64 image data. An empty mimeType defaults to PNG.
func NewArtifact(mimeType, b64 string) Artifact {
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return Artifact{MimeType: mimeType, data: b64}
}

// ArtifactFromBytes encodes raw image bytes into an Artifact.
func ArtifactFromBytes(mimeType string, raw []byte) Artifact {
	return NewArtifact(mimeType, base64.StdEncoding.EncodeToString(raw))
}

// ParseArtifact accepts a data URI or bare base64 text.
func ParseArtifact(s string) (Artifact, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Artifact{}, errors.New("empty artifact")
	}
	mimeType := ""
	if strings.HasPrefix(s, "data:") {
		if i := strings.IndexAny(s, ";,"); i > len("data:") {
			mimeType = s[len("data:"):i]
		}
	}
	data := StripDataURIPrefix(s)
	if data == "" {
		return Artifact{}, errors.New("artifact has no payload")
	}
	return NewArtifact(mimeType, data), nil
}

// StripDataURIPrefix returns everything after the first comma, or s
// unchanged when it has none.
func StripDataURIPrefix(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[i+1:]
	}
	return s
}

// IsZero reports whether the artifact is empty.
func (a Artifact) IsZero() bool {
	return a.data == ""
}

// Base64 returns the raw payload without a data-URI prefix.
func (a Artifact) Base64() string {
	return a.data
}

// DataURI returns the displayable data URI form.
func (a Artifact) DataURI() string {
	if a.IsZero() {
		return ""
	}
	return "data:" + a.MimeType + ";base64," + a.data
}

// Bytes decodes the payload.
func (a Artifact) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(a.data)
}

// String returns the data URI.
func (a Artifact) String() string {
	return a.DataURI()
}
