package worksheets_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/worksheet-lab/internal/worksheets"
	"github.com/JaimeStill/worksheet-lab/pkg/storage"
)

func uploadCmd(name string) worksheets.UploadCommand {
	return worksheets.UploadCommand{
		Data:         samplePDF,
		ContentType:  "application/pdf",
		OriginalName: name,
		Title:        "Fractions",
		Description:  "Adding unlike fractions",
		Category:     "Worksheet",
		Subject:      "Math",
		Tags:         "fractions, grade 4,,",
		Grade:        "4",
		AgeGroup:     "9-10",
	}
}

func TestUpload_Success(t *testing.T) {
	f := newFixture(t, testLogger())
	ctx := context.Background()

	w, err := f.sys.Upload(ctx, uploadCmd("My Fractions.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	if w.ID == "" {
		t.Error("ID is empty")
	}
	if !strings.HasSuffix(w.FileName, "-My_Fractions.pdf") {
		t.Errorf("FileName = %q, want <millis>-My_Fractions.pdf", w.FileName)
	}
	if w.FileURL != publicURL+"/"+w.FileName {
		t.Errorf("FileURL = %q, want public URL of %q", w.FileURL, w.FileName)
	}
	if w.OriginalName != "My Fractions.pdf" {
		t.Errorf("OriginalName = %q, want verbatim client name", w.OriginalName)
	}
	if got := strings.Join(w.Tags, "|"); got != "fractions|grade 4" {
		t.Errorf("Tags = %q, want fractions|grade 4", got)
	}
	if w.SizeBytes != int64(len(samplePDF)) {
		t.Errorf("SizeBytes = %d, want %d", w.SizeBytes, len(samplePDF))
	}
	if w.UploadDate.IsZero() {
		t.Error("UploadDate not set")
	}
	if w.ThumbnailName != "" {
		t.Errorf("ThumbnailName = %q with thumbnails disabled", w.ThumbnailName)
	}
	if !f.exists(t, w.FileName) {
		t.Error("blob not stored")
	}

	got, err := f.sys.Find(ctx, w.ID)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if got.FileName != w.FileName {
		t.Errorf("persisted FileName = %q, want %q", got.FileName, w.FileName)
	}
}

func TestUpload_DefaultSubject(t *testing.T) {
	f := newFixture(t, testLogger())

	cmd := uploadCmd("a.pdf")
	cmd.Subject = "  "

	w, err := f.sys.Upload(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}
	if w.Subject != worksheets.DefaultSubject {
		t.Errorf("Subject = %q, want %q", w.Subject, worksheets.DefaultSubject)
	}
}

func TestUpload_SameNameGetsDistinctKeys(t *testing.T) {
	f := newFixture(t, testLogger())
	ctx := context.Background()

	first, err := f.sys.Upload(ctx, uploadCmd("same.pdf"))
	if err != nil {
		t.Fatalf("first Upload() failed: %v", err)
	}
	second, err := f.sys.Upload(ctx, uploadCmd("same.pdf"))
	if err != nil {
		t.Fatalf("second Upload() failed: %v", err)
	}

	if first.FileName == second.FileName {
		t.Errorf("both uploads stored under %q", first.FileName)
	}
	if f.store.count() != 2 {
		t.Errorf("records = %d, want 2", f.store.count())
	}
}

func TestUpload_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*worksheets.UploadCommand)
		wantErr error
	}{
		{"empty payload", func(c *worksheets.UploadCommand) { c.Data = nil }, worksheets.ErrInvalidFile},
		{"missing name", func(c *worksheets.UploadCommand) { c.OriginalName = "" }, worksheets.ErrInvalidFile},
		{"too large", func(c *worksheets.UploadCommand) { c.Data = make([]byte, 2<<20) }, worksheets.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, testLogger())

			cmd := uploadCmd("a.pdf")
			tt.mutate(&cmd)

			_, err := f.sys.Upload(context.Background(), cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Upload() error = %v, want %v", err, tt.wantErr)
			}
			if f.store.count() != 0 {
				t.Error("record persisted for rejected upload")
			}
		})
	}
}

func TestUpload_StorageFailureSkipsInsert(t *testing.T) {
	f := newFixture(t, testLogger())
	f.blobs.storeErr = storage.ErrExists

	_, err := f.sys.Upload(context.Background(), uploadCmd("a.pdf"))
	if !errors.Is(err, worksheets.ErrUpload) {
		t.Errorf("Upload() error = %v, want ErrUpload", err)
	}
	if !errors.Is(err, storage.ErrExists) {
		t.Errorf("Upload() error = %v, want wrapped ErrExists", err)
	}
	if f.store.count() != 0 {
		t.Error("record persisted without a blob")
	}
}

func TestUpload_InsertFailureRemovesBlob(t *testing.T) {
	f := newFixture(t, testLogger())
	f.store.insertErr = errors.New("connection reset")

	_, err := f.sys.Upload(context.Background(), uploadCmd("a.pdf"))
	if err == nil {
		t.Fatal("Upload() succeeded, want error")
	}

	if len(f.blobs.deleted) != 1 {
		t.Fatalf("deleted = %v, want the stored blob", f.blobs.deleted)
	}
	if f.exists(t, f.blobs.deleted[0]) {
		t.Error("blob left behind after failed insert")
	}
}

func TestUpload_OrphanLogged(t *testing.T) {
	logger, buf := bufferLogger()
	f := newFixture(t, logger)
	f.store.insertErr = errors.New("connection reset")
	f.blobs.deleteErr = errors.New("access denied")

	if _, err := f.sys.Upload(context.Background(), uploadCmd("a.pdf")); err == nil {
		t.Fatal("Upload() succeeded, want error")
	}

	out := buf.String()
	for _, want := range []string{"cleanup failed after db error", "orphaned=true", "storage_key=" + f.blobs.deleted[0]} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestUpload_Thumbnail(t *testing.T) {
	f := newFixture(t, testLogger(), withThumbnails)

	w, err := f.sys.Upload(context.Background(), uploadCmd("lesson.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	want := worksheets.ThumbnailKey(w.FileName, "png")
	if w.ThumbnailName != want {
		t.Errorf("ThumbnailName = %q, want %q", w.ThumbnailName, want)
	}
	if w.ThumbnailURL != publicURL+"/"+want {
		t.Errorf("ThumbnailURL = %q", w.ThumbnailURL)
	}
	if !f.exists(t, want) {
		t.Error("thumbnail blob not stored")
	}
}

func TestUpload_ThumbnailSkippedForUnsupportedType(t *testing.T) {
	f := newFixture(t, testLogger(), withThumbnails)

	cmd := uploadCmd("notes.txt")
	cmd.Data = []byte("plain notes")
	cmd.ContentType = "text/plain"

	w, err := f.sys.Upload(context.Background(), cmd)
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}
	if f.renderer.calls != 0 {
		t.Errorf("renderer called %d times for text/plain", f.renderer.calls)
	}
	if w.ThumbnailName != "" {
		t.Errorf("ThumbnailName = %q, want empty", w.ThumbnailName)
	}
}

func TestUpload_ThumbnailFailureAborts(t *testing.T) {
	f := newFixture(t, testLogger(), withThumbnails)
	f.renderer.err = errRender

	_, err := f.sys.Upload(context.Background(), uploadCmd("lesson.pdf"))
	if !errors.Is(err, worksheets.ErrThumbnail) {
		t.Fatalf("Upload() error = %v, want ErrThumbnail", err)
	}
	if f.store.count() != 0 {
		t.Error("record persisted after thumbnail failure")
	}
	if len(f.blobs.deleted) != 1 || f.exists(t, f.blobs.deleted[0]) {
		t.Errorf("main blob not removed: deleted = %v", f.blobs.deleted)
	}
}

func seed(t *testing.T, f *fixture, records ...worksheets.Worksheet) []string {
	t.Helper()
	ids := make([]string, len(records))
	for i := range records {
		w, err := f.store.Insert(context.Background(), &records[i])
		if err != nil {
			t.Fatalf("Insert() failed: %v", err)
		}
		ids[i] = w.ID
	}
	return ids
}

func dated(title, category, grade string, daysAgo int) worksheets.Worksheet {
	return worksheets.Worksheet{
		Title:      title,
		Subject:    worksheets.DefaultSubject,
		Grade:      grade,
		Category:   category,
		FileName:   title + ".pdf",
		Tags:       []string{},
		UploadDate: time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
	}
}

func titles(items []worksheets.Worksheet) string {
	out := make([]string, len(items))
	for i, w := range items {
		out[i] = w.Title
	}
	return strings.Join(out, ",")
}

func TestList(t *testing.T) {
	f := newFixture(t, testLogger())
	seed(t, f,
		dated("old-math", "Math", "3", 10),
		dated("new-math", "Math", "4", 1),
		dated("science", "Science", "4", 5),
	)

	tests := []struct {
		name    string
		filters worksheets.Filters
		want    string
	}{
		{"all newest first", worksheets.Filters{}, "new-math,science,old-math"},
		{"by category", worksheets.Filters{Category: ptr("Math")}, "new-math,old-math"},
		{"by grade", worksheets.Filters{Grade: ptr("4")}, "new-math,science"},
		{"combined", worksheets.Filters{Category: ptr("Math"), Grade: ptr("3")}, "old-math"},
		{"no match", worksheets.Filters{Category: ptr("Art")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := f.sys.List(context.Background(), tt.filters)
			if err != nil {
				t.Fatalf("List() failed: %v", err)
			}
			if items == nil {
				t.Fatal("List() returned nil, want empty slice")
			}
			if got := titles(items); got != tt.want {
				t.Errorf("List() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPopularRecent(t *testing.T) {
	f := newFixture(t, testLogger())
	seed(t, f,
		dated("a", "Math", "1", 4),
		dated("b", "Math", "1", 3),
		dated("c", "Math", "1", 2),
		dated("d", "Math", "1", 1),
	)
	ctx := context.Background()

	popular, err := f.sys.Popular(ctx)
	if err != nil {
		t.Fatalf("Popular() failed: %v", err)
	}
	recent, err := f.sys.Recent(ctx)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}

	if got := titles(recent); got != "d,c,b" {
		t.Errorf("Recent() = %q, want d,c,b", got)
	}
	if titles(popular) != titles(recent) {
		t.Errorf("Popular() = %q, want same as Recent() %q", titles(popular), titles(recent))
	}
}

func TestFind_NotFound(t *testing.T) {
	f := newFixture(t, testLogger())

	if _, err := f.sys.Find(context.Background(), "missing"); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("Find() error = %v, want ErrNotFound", err)
	}
}

func TestEdit(t *testing.T) {
	f := newFixture(t, testLogger())
	ctx := context.Background()

	w, err := f.sys.Upload(ctx, uploadCmd("a.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	got, err := f.sys.Edit(ctx, w.ID, worksheets.EditCommand{
		Title: ptr("Renamed"),
		Tags:  ptr("review"),
	})
	if err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}

	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}
	if strings.Join(got.Tags, "|") != "review" {
		t.Errorf("Tags = %v, want replaced with [review]", got.Tags)
	}
	if got.Description != w.Description || got.Subject != w.Subject || got.FileName != w.FileName {
		t.Error("Edit() changed fields that were not supplied")
	}

	if _, err := f.sys.Edit(ctx, "missing", worksheets.EditCommand{Title: ptr("x")}); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("Edit() of missing id error = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t, testLogger(), withThumbnails)
	ctx := context.Background()

	w, err := f.sys.Upload(ctx, uploadCmd("a.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	if err := f.sys.Delete(ctx, w.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if f.exists(t, w.FileName) || f.exists(t, w.ThumbnailName) {
		t.Error("blobs remain after delete")
	}
	if _, err := f.sys.Find(ctx, w.ID); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("Find() after delete error = %v, want ErrNotFound", err)
	}
	if err := f.sys.Delete(ctx, w.ID); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestDelete_StorageFailureStillRemovesRecord(t *testing.T) {
	logger, buf := bufferLogger()
	f := newFixture(t, logger)
	ctx := context.Background()

	w, err := f.sys.Upload(ctx, uploadCmd("a.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}
	f.blobs.deleteErr = errors.New("access denied")

	if err := f.sys.Delete(ctx, w.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if f.store.count() != 0 {
		t.Error("record remains after delete")
	}
	if !strings.Contains(buf.String(), "storage cleanup failed") {
		t.Errorf("storage failure not logged:\n%s", buf.String())
	}
}

func TestDelete_CompletesAfterCancel(t *testing.T) {
	f := newFixture(t, testLogger(), withThumbnails)

	w, err := f.sys.Upload(context.Background(), uploadCmd("a.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.blobs.onDelete = cancel

	if err := f.sys.Delete(ctx, w.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if strings.Join(f.blobs.deleted, ",") != w.FileName+","+w.ThumbnailName {
		t.Errorf("deleted = %v, want file and thumbnail", f.blobs.deleted)
	}
	if f.exists(t, w.FileName) || f.exists(t, w.ThumbnailName) {
		t.Error("blobs remain after delete")
	}
	if f.store.count() != 0 {
		t.Error("record remains after cancelled delete")
	}
}

func TestDelete_CancelledBeforeLookup(t *testing.T) {
	f := newFixture(t, testLogger())

	w, err := f.sys.Upload(context.Background(), uploadCmd("a.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.sys.Delete(ctx, w.ID); !errors.Is(err, context.Canceled) {
		t.Fatalf("Delete() error = %v, want context.Canceled", err)
	}
	if len(f.blobs.deleted) != 0 || f.store.count() != 1 {
		t.Error("cleanup ran for a request cancelled before lookup")
	}
}

func TestDownload_Blob(t *testing.T) {
	f := newFixture(t, testLogger())
	ctx := context.Background()

	w, err := f.sys.Upload(ctx, uploadCmd("Worksheet 1.pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	dl, err := f.sys.Download(ctx, w.ID)
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	defer dl.Body.Close()

	body, _ := io.ReadAll(dl.Body)
	if string(body) != string(samplePDF) {
		t.Errorf("body = %q, want uploaded bytes", body)
	}
	if dl.FileName != "Worksheet 1.pdf" {
		t.Errorf("FileName = %q, want original name", dl.FileName)
	}
	if dl.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q, want application/pdf", dl.ContentType)
	}
}

func TestDownload_MissingBlob(t *testing.T) {
	f := newFixture(t, testLogger())
	ids := seed(t, f, worksheets.Worksheet{FileName: "1700000000000-gone.pdf", OriginalName: "gone.pdf"})

	if _, err := f.sys.Download(context.Background(), ids[0]); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestDownload_NoFile(t *testing.T) {
	f := newFixture(t, testLogger())
	ids := seed(t, f, worksheets.Worksheet{Title: "empty"})

	if _, err := f.sys.Download(context.Background(), ids[0]); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestDownload_LegacyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/legacy/quiz.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(samplePDF)
	}))
	defer srv.Close()

	f := newFixture(t, testLogger())
	ids := seed(t, f,
		worksheets.Worksheet{FileURL: srv.URL + "/legacy/quiz.pdf", OriginalName: "Quiz.pdf"},
		worksheets.Worksheet{FileURL: srv.URL + "/legacy/missing.pdf"},
	)
	ctx := context.Background()

	dl, err := f.sys.Download(ctx, ids[0])
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	defer dl.Body.Close()

	body, _ := io.ReadAll(dl.Body)
	if string(body) != string(samplePDF) {
		t.Errorf("body = %q, want remote bytes", body)
	}
	if dl.FileName != "Quiz.pdf" {
		t.Errorf("FileName = %q, want Quiz.pdf", dl.FileName)
	}

	if _, err := f.sys.Download(ctx, ids[1]); !errors.Is(err, worksheets.ErrNotFound) {
		t.Errorf("Download() of remote 404 error = %v, want ErrNotFound", err)
	}
}
