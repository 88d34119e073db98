package media

import (
	"context"
	"encoding/base64"

	"golang.org/x/sync/errgroup"

	"github.com/petal-labs/coverkit/core"
)

// EncodeAttachments base64-encodes each attachment concurrently. The
// result has one entry per input in the same order. Nil or empty
// attachments yield nil. It returns once every encoding has finished.
func EncodeAttachments(ctx context.Context, atts ...*core.Attachment) ([]*core.InlineData, error) {
	out := make([]*core.InlineData, len(atts))

	g, ctx := errgroup.WithContext(ctx)
	for i, att := range atts {
		if att.IsEmpty() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			mimeType := att.MimeType
			if mimeType == "" {
				mimeType = core.DefaultImageMimeType
			}
			out[i] = &core.InlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(att.Data),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
