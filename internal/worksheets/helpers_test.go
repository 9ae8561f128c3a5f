package worksheets_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"testing"

	"github.com/JaimeStill/worksheet-lab/internal/thumbnails"
	"github.com/JaimeStill/worksheet-lab/internal/worksheets"
	"github.com/JaimeStill/worksheet-lab/pkg/storage"
)

const publicURL = "http://localhost:5000/files"

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

type memStore struct {
	mu        sync.Mutex
	seq       int
	records   map[string]worksheets.Worksheet
	order     []string
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]worksheets.Worksheet)}
}

func (m *memStore) Insert(ctx context.Context, w *worksheets.Worksheet) (*worksheets.Worksheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.insertErr != nil {
		return nil, m.insertErr
	}
	for _, r := range m.records {
		if w.FileName != "" && r.FileName == w.FileName {
			return nil, worksheets.ErrDuplicate
		}
	}

	m.seq++
	rec := *w
	rec.ID = "ws-" + strconv.Itoa(m.seq)
	m.records[rec.ID] = rec
	m.order = append(m.order, rec.ID)
	return &rec, nil
}

func (m *memStore) Find(ctx context.Context, id string) (*worksheets.Worksheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, worksheets.ErrNotFound
	}
	return &rec, nil
}

func (m *memStore) List(ctx context.Context, f worksheets.Filters, limit int) ([]worksheets.Worksheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]worksheets.Worksheet, 0)
	for _, id := range slices.Backward(m.order) {
		rec := m.records[id]
		if !matches(f.Category, rec.Category) || !matches(f.Grade, rec.Grade) {
			continue
		}
		out = append(out, rec)
	}

	slices.SortStableFunc(out, func(a, b worksheets.Worksheet) int {
		return b.UploadDate.Compare(a.UploadDate)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matches(want *string, got string) bool {
	return want == nil || *want == got
}

func (m *memStore) Update(ctx context.Context, id string, cmd worksheets.EditCommand) (*worksheets.Worksheet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, worksheets.ErrNotFound
	}
	cmd.Apply(&rec)
	m.records[id] = rec
	return &rec, nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return worksheets.ErrNotFound
	}
	delete(m.records, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// faultyBlobs wraps a storage system and fails selected operations.
type faultyBlobs struct {
	storage.System
	storeErr  error
	deleteErr error
	deleted   []string
	onDelete  func()
}

func (f *faultyBlobs) Store(ctx context.Context, key string, data []byte, contentType string) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	return f.System.Store(ctx, key, data, contentType)
}

func (f *faultyBlobs) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	if f.onDelete != nil {
		f.onDelete()
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.System.Delete(ctx, key)
}

type fakeRenderer struct {
	err   error
	calls int
}

func (r *fakeRenderer) Supports(contentType string) bool {
	return contentType == "application/pdf"
}

func (r *fakeRenderer) Render(ctx context.Context, data []byte, contentType string) (*thumbnails.Thumbnail, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &thumbnails.Thumbnail{
		Data:        []byte("\x89PNG preview"),
		ContentType: "image/png",
		Extension:   "png",
	}, nil
}

var errRender = errors.New("imagemagick exited with status 1")

func newBlobs(t *testing.T) *faultyBlobs {
	t.Helper()
	sys, err := storage.New(&storage.Config{
		Driver:    storage.DriverFilesystem,
		BasePath:  t.TempDir(),
		PublicURL: publicURL,
	}, testLogger())
	if err != nil {
		t.Fatalf("storage.New() failed: %v", err)
	}
	return &faultyBlobs{System: sys}
}

type fixture struct {
	store    *memStore
	blobs    *faultyBlobs
	renderer *fakeRenderer
	sys      worksheets.System
}

type fixtureOption func(*worksheets.Config)

func withThumbnails(cfg *worksheets.Config) {
	cfg.GenerateThumbnail = true
}

func newFixture(t *testing.T, logger *slog.Logger, opts ...fixtureOption) *fixture {
	t.Helper()
	cfg := &worksheets.Config{FeaturedLimit: 3, DownloadTimeout: "5s"}
	for _, opt := range opts {
		opt(cfg)
	}

	f := &fixture{
		store:    newMemStore(),
		blobs:    newBlobs(t),
		renderer: &fakeRenderer{},
	}
	f.sys = worksheets.New(f.store, f.blobs, f.renderer, cfg, 1<<20, logger)
	return f
}

func (f *fixture) exists(t *testing.T, key string) bool {
	t.Helper()
	obj, err := f.blobs.Open(context.Background(), key)
	if errors.Is(err, storage.ErrNotFound) {
		return false
	}
	if err != nil {
		t.Fatalf("Open(%q) failed: %v", key, err)
	}
	obj.Body.Close()
	return true
}

func ptr(s string) *string { return &s }
