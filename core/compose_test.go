package core

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustPlatform(t *testing.T, id PlatformID) Platform {
	t.Helper()
	p, ok := LookupPlatform(id)
	if !ok {
		t.Fatalf("LookupPlatform(%q) not found", id)
	}
	return p
}

func TestComposeCoverPromptTitleOnly(t *testing.T) {
	req := NewCoverRequest()
	req.MainTitle = "月入过万的副业！"

	parts := ComposeCoverPrompt(req, mustPlatform(t, PlatformDouyin), nil, nil)

	if len(parts) != 1 {
		t.Fatalf("len(parts) = %d, want 1", len(parts))
	}
	if parts[0].Inline != nil {
		t.Fatal("expected text-only part")
	}
	text := parts[0].Text
	for _, want := range []string{`"月入过万的副业！"`, "9:16", `Subtitle Text (Smaller): ""`, "抖音"} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q\n%s", want, text)
		}
	}
	if strings.Contains(text, "Reference Image") {
		t.Error("prompt should not mention reference images when none are attached")
	}
}

func TestComposeCoverPromptVerbatimTitles(t *testing.T) {
	titles := []struct {
		main, sub string
	}{
		{`He said "go"`, `a\nb`},
		{"  spaced  ", "尾巴 "},
		{"<b>bold</b> & more", "100%"},
	}

	for _, tt := range titles {
		req := &CoverRequest{MainTitle: tt.main, SubTitle: tt.sub, Platform: PlatformYouTube}
		text := ComposeCoverPrompt(req, mustPlatform(t, PlatformYouTube), nil, nil)[0].Text

		if !strings.Contains(text, `"`+tt.main+`"`) {
			t.Errorf("main title %q not embedded verbatim", tt.main)
		}
		if !strings.Contains(text, `"`+tt.sub+`"`) {
			t.Errorf("subtitle %q not embedded verbatim", tt.sub)
		}
	}
}

func TestComposeCoverPromptPartOrder(t *testing.T) {
	subject := &InlineData{MimeType: "image/jpeg", Data: "c3ViamVjdA=="}
	style := &InlineData{MimeType: "image/webp", Data: "c3R5bGU="}

	tests := []struct {
		name       string
		subject    *InlineData
		style      *InlineData
		wantInline []*InlineData
		wantLines  []string
		noLines    []string
	}{
		{
			name:      "none",
			noLines:   []string{subjectRoleLine, styleRoleLine},
			wantLines: nil,
		},
		{
			name:       "subject only",
			subject:    subject,
			wantInline: []*InlineData{subject},
			wantLines:  []string{subjectRoleLine},
			noLines:    []string{styleRoleLine},
		},
		{
			name:       "style only",
			style:      style,
			wantInline: []*InlineData{style},
			wantLines:  []string{styleRoleLine},
			noLines:    []string{subjectRoleLine},
		},
		{
			name:       "both",
			subject:    subject,
			style:      style,
			wantInline: []*InlineData{subject, style},
			wantLines:  []string{subjectRoleLine, styleRoleLine},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CoverRequest{MainTitle: "t", Platform: PlatformBilibili}
			parts := ComposeCoverPrompt(req, mustPlatform(t, PlatformBilibili), tt.subject, tt.style)

			if len(parts) != len(tt.wantInline)+1 {
				t.Fatalf("len(parts) = %d, want %d", len(parts), len(tt.wantInline)+1)
			}

			var gotInline []*InlineData
			for _, p := range parts[:len(parts)-1] {
				gotInline = append(gotInline, p.Inline)
			}
			if diff := cmp.Diff(tt.wantInline, gotInline); diff != "" {
				t.Errorf("inline parts mismatch (-want +got):\n%s", diff)
			}

			last := parts[len(parts)-1]
			if last.Inline != nil || last.Text == "" {
				t.Fatal("final part must be the text instruction")
			}
			for _, l := range tt.wantLines {
				if !strings.Contains(last.Text, l) {
					t.Errorf("missing role line %q", l)
				}
			}
			for _, l := range tt.noLines {
				if strings.Contains(last.Text, l) {
					t.Errorf("unexpected role line %q", l)
				}
			}
			if len(tt.wantLines) == 2 && strings.Index(last.Text, subjectRoleLine) > strings.Index(last.Text, styleRoleLine) {
				t.Error("subject role line should precede style role line")
			}
		})
	}
}

func TestComposeCoverPromptTagsAndInstructions(t *testing.T) {
	req := &CoverRequest{
		MainTitle:    "t",
		Platform:     PlatformXiaohongshu,
		Tags:         NewTagSet("高饱和", "电影感"),
		CustomPrompt: "make it pop",
	}
	text := ComposeCoverPrompt(req, mustPlatform(t, PlatformXiaohongshu), nil, nil)[0].Text

	for _, want := range []string{
		"Style Tags: 高饱和, 电影感",
		"Custom Instructions: make it pop",
		"Aspect Ratio Target: 3:4",
		"Optimize for 小红书 UI overlays",
		"1. QUALITY:",
		"4. VIBE:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposeCoverPromptPassesUnknownRatio(t *testing.T) {
	p := Platform{ID: "custom", Name: "Custom", Ratio: "21:9"}
	text := ComposeCoverPrompt(&CoverRequest{MainTitle: "t"}, p, nil, nil)[0].Text
	if !strings.Contains(text, "Aspect Ratio Target: 21:9") {
		t.Error("unsupported ratio should pass through unmodified")
	}
}

func TestComposeEditPrompt(t *testing.T) {
	parts := ComposeEditPrompt("", "aGVsbG8=", "make the text red")

	if len(parts) != 2 {
		t.Fatalf("len(parts) = %d, want 2", len(parts))
	}
	want := &InlineData{MimeType: DefaultImageMimeType, Data: "aGVsbG8="}
	if diff := cmp.Diff(want, parts[0].Inline); diff != "" {
		t.Errorf("image part mismatch (-want +got):\n%s", diff)
	}
	if !strings.HasSuffix(parts[1].Text, "Instruction: make the text red") {
		t.Errorf("instruction text = %q", parts[1].Text)
	}
	if !strings.Contains(parts[1].Text, "text legibility") {
		t.Error("edit prompt should ask to keep text legible")
	}
}
