package core

import (
	"fmt"
	"strings"
)

// Attachment is a reference image held fully in memory.
type Attachment struct {
	Data     []byte
	MimeType string
	Filename string
}

// IsEmpty reports whether the attachment carries no bytes.
func (a *Attachment) IsEmpty() bool {
	return a == nil || len(a.Data) == 0
}

// CoverRequest is the mutable form state for one cover.
type CoverRequest struct {
	MainTitle    string
	SubTitle     string
	Platform     PlatformID
	Subject      *Attachment // main subject, likeness preserved
	StyleRef     *Attachment // palette, layout and lighting reference
	Tags         TagSet
	CustomPrompt string
}

// NewCoverRequest returns a request with session defaults.
func NewCoverRequest() *CoverRequest {
	return &CoverRequest{Platform: DefaultPlatformID}
}

// Validate checks the fields that must hold before a generation call.
func (r *CoverRequest) Validate() error {
	if strings.TrimSpace(r.MainTitle) == "" {
		return ErrMissingTitle
	}
	if _, ok := LookupPlatform(r.Platform); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlatform, r.Platform)
	}
	return nil
}

// ResolvePlatform returns the selected platform profile.
func (r *CoverRequest) ResolvePlatform() (Platform, error) {
	p, ok := LookupPlatform(r.Platform)
	if !ok {
		return Platform{}, fmt.Errorf("%w: %q", ErrUnknownPlatform, r.Platform)
	}
	return p, nil
}

var styleTags = []string{
	"强冲突", "高饱和", "大字报", "极简冷淡",
	"电影感", "清新干货", "赛博朋克", "搞钱风",
	"复古胶片", "3D渲染",
}

// StyleTags returns the suggested style tag labels.
func StyleTags() []string {
	out := make([]string, len(styleTags))
	copy(out, styleTags)
	return out
}

// TagSet is a membership-only set of style labels. Labels keeps the
// insertion order for rendering. The zero value is empty and ready to use.
type TagSet struct {
	labels []string
}

// NewTagSet builds a set from labels, dropping blanks and duplicates.
func NewTagSet(labels ...string) TagSet {
	var s TagSet
	for _, l := range labels {
		s.Add(l)
	}
	return s
}

// Has reports whether label is in the set.
func (s *TagSet) Has(label string) bool {
	return s.index(label) >= 0
}

// Add inserts label. Blank labels are ignored.
func (s *TagSet) Add(label string) {
	label = strings.TrimSpace(label)
	if label == "" || s.Has(label) {
		return
	}
	s.labels = append(s.labels, label)
}

// Remove deletes label if present.
func (s *TagSet) Remove(label string) {
	i := s.index(strings.TrimSpace(label))
	if i < 0 {
		return
	}
	s.labels = append(s.labels[:i:i], s.labels[i+1:]...)
}

// Toggle flips membership of label and reports whether it is now present.
func (s *TagSet) Toggle(label string) bool {
	if s.Has(strings.TrimSpace(label)) {
		s.Remove(label)
		return false
	}
	s.Add(label)
	return s.Has(strings.TrimSpace(label))
}

// Len returns the number of labels.
func (s *TagSet) Len() int {
	return len(s.labels)
}

// Labels returns a copy of the labels.
func (s *TagSet) Labels() []string {
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

func (s *TagSet) index(label string) int {
	for i, l := range s.labels {
		if l == label {
			return i
		}
	}
	return -1
}
