// Package thumbnails renders first-page previews of uploaded documents.
package thumbnails

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/document-context/pkg/config"
	"github.com/JaimeStill/document-context/pkg/document"
	"github.com/JaimeStill/document-context/pkg/image"
)

var (
	ErrUnsupported  = errors.New("content type cannot be rendered")
	ErrRenderFailed = errors.New("thumbnail render failed")
)

var supportedFormats = map[string]bool{
	"application/pdf": true,
}

// Thumbnail is a rendered preview image.
type Thumbnail struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Renderer produces a preview image for a document payload.
type Renderer interface {
	Supports(contentType string) bool
	Render(ctx context.Context, data []byte, contentType string) (*Thumbnail, error)
}

type renderer struct {
	cfg    config.ImageConfig
	format document.ImageFormat
	logger *slog.Logger
}

// New creates a Renderer from a finalized cfg. Rendering shells out to ImageMagick.
func New(cfg *Config, logger *slog.Logger) Renderer {
	return &renderer{
		cfg: config.ImageConfig{
			Format:  cfg.Format,
			DPI:     cfg.DPI,
			Quality: cfg.Quality,
			Options: map[string]any{"background": "white"},
		},
		format: document.ImageFormat(cfg.Format),
		logger: logger.With("system", "thumbnails"),
	}
}

func (r *renderer) Supports(contentType string) bool {
	return supportedFormats[contentType]
}

func (r *renderer) Render(ctx context.Context, data []byte, contentType string) (*Thumbnail, error) {
	if !r.Supports(contentType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, contentType)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, cleanup, err := spool(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer cleanup()

	doc, err := document.Open(path, contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer doc.Close()

	page, err := doc.ExtractPage(1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	imgRenderer, err := image.NewImageMagickRenderer(r.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	out, err := page.ToImage(imgRenderer, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	r.logger.Debug("thumbnail rendered", "content_type", contentType, "size", len(out))

	return &Thumbnail{
		Data:        out,
		ContentType: r.mimeType(),
		Extension:   string(r.format),
	}, nil
}

func (r *renderer) mimeType() string {
	if r.format == document.JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// spool writes data to a temp file because document-context opens documents by path.
func spool(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "thumbnail-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}
