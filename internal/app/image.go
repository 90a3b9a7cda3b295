package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"

	"savings/internal/core"
	"savings/internal/log"
)

var imageMediaType = regexp.MustCompile(`^image/[a-z0-9.+-]+$`)

// ImageUpload is a user-selected background image.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// IngestImage validates an upload, reads it and stores it as a data URL in
// the customizer's scratch state. The body is read without holding the
// state lock. On any failure the scratch state is left untouched.
func (c *Controller) IngestImage(ctx context.Context, up ImageUpload) error {
	mediaType, err := imageType(up.ContentType)
	if err != nil {
		return err
	}
	max := c.opts.MaxImageBytes
	if up.Size > max {
		return c.tooLarge(up.Size)
	}

	c.mu.Lock()
	act, err := c.actionFor(ActionCustomizeBackground)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	data, err := io.ReadAll(io.LimitReader(ctxReader{ctx: ctx, r: up.Body}, max+1))
	if err != nil {
		c.events.LogError(ctx, "Image read failed", err, log.ComponentGoals, log.OpUpload,
			log.LogFields{"filename": up.Filename})
		return fmt.Errorf("%w: %w", ErrImageRead, err)
	}
	if int64(len(data)) > max {
		return c.tooLarge(int64(len(data)))
	}

	url := "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	// The modal may have moved on while the body was being read.
	if cur, err := c.actionFor(ActionCustomizeBackground); err != nil || cur.ID != act.ID {
		return ErrNoAction
	}
	c.state.UI.Scratch.SelectedImage = url
	c.state.UI.Scratch.SelectedColor = ""
	c.state.UI.Scratch.Tab = TabImage

	c.logger.DebugContext(ctx, "Image staged", log.FieldGoalID, act.ID, log.FieldBytes, len(data))
	return nil
}

func imageType(contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	mt = strings.ToLower(mt)
	if err != nil || !imageMediaType.MatchString(mt) {
		return "", core.Invalid("Please select an image file (JPG, PNG, etc.)", fmt.Errorf("content type %q", contentType))
	}
	return mt, nil
}

func (c *Controller) tooLarge(size int64) error {
	return core.Invalid("Image must be less than "+SizeLabel(c.opts.MaxImageBytes),
		fmt.Errorf("image is %s", humanize.IBytes(uint64(size))))
}

// SizeLabel prints an upload limit for people: whole mebibytes as "2MB",
// whole kibibytes as "512KB", anything else via humanize.
func SizeLabel(n int64) string {
	const kib, mib = 1 << 10, 1 << 20
	switch {
	case n >= mib && n%mib == 0:
		return fmt.Sprintf("%dMB", n/mib)
	case n >= kib && n%kib == 0:
		return fmt.Sprintf("%dKB", n/kib)
	}
	return humanize.IBytes(uint64(n))
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
