package worksheets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/JaimeStill/worksheet-lab/internal/thumbnails"
	"github.com/JaimeStill/worksheet-lab/pkg/storage"
)

// System defines the worksheet operations.
type System interface {
	Upload(ctx context.Context, cmd UploadCommand) (*Worksheet, error)
	List(ctx context.Context, filters Filters) ([]Worksheet, error)
	Find(ctx context.Context, id string) (*Worksheet, error)
	Popular(ctx context.Context) ([]Worksheet, error)
	Recent(ctx context.Context) ([]Worksheet, error)
	Download(ctx context.Context, id string) (*Download, error)
	Edit(ctx context.Context, id string, cmd EditCommand) (*Worksheet, error)
	Delete(ctx context.Context, id string) error
}

// Download is an open stream of a worksheet file. Callers must close Body.
type Download struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
	FileName    string
}

type system struct {
	store         Store
	blobs         storage.System
	renderer      thumbnails.Renderer
	keyer         *Keyer
	client        *http.Client
	cfg           Config
	maxUploadSize int64
	now           func() time.Time
	logger        *slog.Logger
}

// New creates the worksheet system. renderer may be nil when thumbnail
// generation is disabled.
func New(
	store Store,
	blobs storage.System,
	renderer thumbnails.Renderer,
	cfg *Config,
	maxUploadSize int64,
	logger *slog.Logger,
) System {
	return &system{
		store:         store,
		blobs:         blobs,
		renderer:      renderer,
		keyer:         NewKeyer(),
		client:        &http.Client{Timeout: cfg.DownloadTimeoutDuration()},
		cfg:           *cfg,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
		logger:        logger.With("system", "worksheets"),
	}
}

func (s *system) Upload(ctx context.Context, cmd UploadCommand) (*Worksheet, error) {
	if err := cmd.Validate(s.maxUploadSize); err != nil {
		uploadsTotal.WithLabelValues(resultInvalid).Inc()
		return nil, err
	}

	contentType := cmd.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := s.keyer.Key(cmd.OriginalName)
	if err := s.blobs.Store(ctx, key, cmd.Data, contentType); err != nil {
		uploadsTotal.WithLabelValues(resultStorage).Inc()
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}
	stored := []string{key}

	w := &Worksheet{
		Title:        cmd.Title,
		Description:  cmd.Description,
		Category:     cmd.Category,
		Subject:      cmd.NormalizedSubject(),
		Tags:         ParseTags(cmd.Tags),
		Grade:        cmd.Grade,
		AgeGroup:     cmd.AgeGroup,
		FileURL:      s.blobs.PublicURL(key),
		FileName:     key,
		OriginalName: cmd.OriginalName,
		ContentType:  contentType,
		SizeBytes:    int64(len(cmd.Data)),
		PageCount:    cmd.PageCount,
		UploadDate:   s.now().UTC(),
	}

	if s.wantsThumbnail(contentType) {
		thumbKey, err := s.storeThumbnail(ctx, key, cmd.Data, contentType)
		if err != nil {
			uploadsTotal.WithLabelValues(resultThumbnail).Inc()
			s.cleanup(ctx, "thumbnail failed", stored...)
			return nil, err
		}
		stored = append(stored, thumbKey)
		w.ThumbnailName = thumbKey
		w.ThumbnailURL = s.blobs.PublicURL(thumbKey)
	}

	out, err := s.store.Insert(ctx, w)
	if err != nil {
		uploadsTotal.WithLabelValues(resultDatabase).Inc()
		s.cleanup(ctx, "cleanup failed after db error", stored...)
		return nil, fmt.Errorf("save worksheet: %w", err)
	}

	uploadsTotal.WithLabelValues(resultSuccess).Inc()
	s.logger.Info("worksheet uploaded", "id", out.ID, "file_name", key, "size", out.SizeBytes)
	return out, nil
}

func (s *system) wantsThumbnail(contentType string) bool {
	if !s.cfg.GenerateThumbnail || s.renderer == nil {
		return false
	}
	if !s.renderer.Supports(contentType) {
		s.logger.Debug("thumbnail skipped", "content_type", contentType)
		return false
	}
	return true
}

func (s *system) storeThumbnail(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	thumb, err := s.renderer.Render(ctx, data, contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrThumbnail, err)
	}

	thumbKey := ThumbnailKey(key, thumb.Extension)
	if err := s.blobs.Store(ctx, thumbKey, thumb.Data, thumb.ContentType); err != nil {
		return "", fmt.Errorf("%w: %w", ErrThumbnail, err)
	}
	return thumbKey, nil
}

// cleanup removes blobs from a failed upload. A blob that cannot be removed is an orphan.
func (s *system) cleanup(ctx context.Context, msg string, keys ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if err := s.blobs.Delete(ctx, key); err != nil {
			orphanedBlobsTotal.Inc()
			s.logger.Error(msg, "storage_key", key, "orphaned", true, "error", err)
		}
	}
}

func (s *system) List(ctx context.Context, filters Filters) ([]Worksheet, error) {
	return s.store.List(ctx, filters, 0)
}

func (s *system) Find(ctx context.Context, id string) (*Worksheet, error) {
	return s.store.Find(ctx, id)
}

// Popular has no popularity signal to rank by and returns the newest records.
func (s *system) Popular(ctx context.Context) ([]Worksheet, error) {
	return s.store.List(ctx, Filters{}, s.cfg.FeaturedLimit)
}

func (s *system) Recent(ctx context.Context) ([]Worksheet, error) {
	return s.store.List(ctx, Filters{}, s.cfg.FeaturedLimit)
}

func (s *system) Download(ctx context.Context, id string) (*Download, error) {
	w, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	name := w.OriginalName
	if name == "" {
		name = path.Base(w.FileName)
	}

	switch {
	case w.FileName != "":
		return s.openBlob(ctx, w.FileName, name)
	case w.FileURL != "":
		return s.fetchURL(ctx, w.FileURL, name)
	default:
		return nil, ErrNotFound
	}
}

func (s *system) openBlob(ctx context.Context, key, name string) (*Download, error) {
	obj, err := s.blobs.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}

	return &Download{
		Body:        obj.Body,
		ContentType: obj.ContentType,
		Size:        obj.Size,
		FileName:    name,
	}, nil
}

// fetchURL serves records that predate blob keys and only carry a public URL.
func (s *system) fetchURL(ctx context.Context, url, name string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrNotFound
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch file: unexpected status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if name == "" || name == "." {
		name = path.Base(req.URL.Path)
	}

	return &Download{
		Body:        resp.Body,
		ContentType: contentType,
		Size:        resp.ContentLength,
		FileName:    name,
	}, nil
}

func (s *system) Edit(ctx context.Context, id string, cmd EditCommand) (*Worksheet, error) {
	w, err := s.store.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}
	s.logger.Info("worksheet updated", "id", id)
	return w, nil
}

func (s *system) Delete(ctx context.Context, id string) error {
	w, err := s.store.Find(ctx, id)
	if err != nil {
		return err
	}

	// Cleanup and record removal finish even if the caller goes away.
	ctx = context.WithoutCancel(ctx)

	for _, key := range []string{w.FileName, w.ThumbnailName} {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Error("storage cleanup failed", "storage_key", key, "error", err)
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("worksheet deleted", "id", id)
	return nil
}
