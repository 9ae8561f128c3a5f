package worksheets_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/worksheet-lab/internal/worksheets"
	"github.com/JaimeStill/worksheet-lab/pkg/database"
	"github.com/JaimeStill/worksheet-lab/pkg/lifecycle"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestListQuery(t *testing.T) {
	tests := []struct {
		name      string
		filters   worksheets.Filters
		limit     int
		wantTail  string
		wantCount int
	}{
		{"unfiltered", worksheets.Filters{}, 0, " FROM public.worksheets w ORDER BY w.upload_date DESC", 0},
		{"featured", worksheets.Filters{}, 3, " FROM public.worksheets w ORDER BY w.upload_date DESC LIMIT 3", 0},
		{
			"category and grade",
			worksheets.Filters{Category: ptr("Math"), Grade: ptr("4")},
			0,
			" FROM public.worksheets w WHERE w.category = $1 AND w.grade = $2 ORDER BY w.upload_date DESC",
			2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := worksheets.ListQuery(tt.filters, tt.limit)
			if !strings.HasPrefix(sql, "SELECT w.id, w.title,") {
				t.Errorf("sql = %q, want full projection", sql)
			}
			if !strings.HasSuffix(sql, tt.wantTail) {
				t.Errorf("sql = %q, want suffix %q", sql, tt.wantTail)
			}
			if len(args) != tt.wantCount {
				t.Errorf("args = %v, want %d", args, tt.wantCount)
			}
		})
	}
}

// newPostgresStore starts a PostgreSQL container and applies the embedded
// migrations. Set TEST_INTEGRATION to run it.
func newPostgresStore(t *testing.T) worksheets.Store {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("TEST_INTEGRATION not set")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("worksheets_test"),
		postgres.WithUsername("worksheets"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := &database.Config{
		Host:     host,
		Port:     port.Int(),
		Name:     "worksheets_test",
		User:     "worksheets",
		Password: "test-password",
	}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() failed: %v", err)
	}

	db, err := database.New(cfg, testLogger())
	if err != nil {
		t.Fatalf("database.New() failed: %v", err)
	}
	lc := lifecycle.New()
	if err := db.Start(lc); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { lc.Shutdown(5 * time.Second) })

	if err := database.Migrate(cfg, worksheets.Migrations, "migrations", testLogger()); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	return worksheets.NewPostgresStore(db.Connection(), testLogger())
}

func TestPostgresStore(t *testing.T) {
	store := newPostgresStore(t)
	ctx := context.Background()

	var ids []string
	for _, w := range []worksheets.Worksheet{
		dated("old-math", "Math", "3", 10),
		dated("new-math", "Math", "4", 1),
		dated("science", "Science", "4", 5),
	} {
		got, err := store.Insert(ctx, &w)
		if err != nil {
			t.Fatalf("Insert(%s) failed: %v", w.Title, err)
		}
		ids = append(ids, got.ID)
	}

	dup := dated("copy", "Math", "3", 0)
	dup.FileName = "old-math.pdf"
	if _, err := store.Insert(ctx, &dup); !errors.Is(err, worksheets.ErrDuplicate) {
		t.Errorf("Insert() duplicate file name error = %v, want ErrDuplicate", err)
	}

	t.Run("list", func(t *testing.T) {
		tests := []struct {
			name    string
			filters worksheets.Filters
			limit   int
			want    string
		}{
			{"newest first", worksheets.Filters{}, 0, "new-math,science,old-math"},
			{"limit", worksheets.Filters{}, 2, "new-math,science"},
			{"category", worksheets.Filters{Category: ptr("Math")}, 0, "new-math,old-math"},
			{"grade", worksheets.Filters{Grade: ptr("4")}, 0, "new-math,science"},
			{"no match", worksheets.Filters{Category: ptr("Art")}, 0, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				items, err := store.List(ctx, tt.filters, tt.limit)
				if err != nil {
					t.Fatalf("List() failed: %v", err)
				}
				if got := titles(items); got != tt.want {
					t.Errorf("List() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("update replaces tags", func(t *testing.T) {
		tags := "geometry, angles"
		title := "angles"
		got, err := store.Update(ctx, ids[0], worksheets.EditCommand{Title: &title, Tags: &tags})
		if err != nil {
			t.Fatalf("Update() failed: %v", err)
		}
		if got.Title != "angles" || strings.Join(got.Tags, "|") != "geometry|angles" {
			t.Errorf("Update() = %+v", got)
		}
		if got.Category != "Math" {
			t.Errorf("Category = %q, want untouched Math", got.Category)
		}
	})

	t.Run("missing ids", func(t *testing.T) {
		for _, id := range []string{"not-a-uuid", "5b0c4c0e-3f4a-4d44-9a52-3f4c3bb0b0a1"} {
			if _, err := store.Find(ctx, id); !errors.Is(err, worksheets.ErrNotFound) {
				t.Errorf("Find(%s) error = %v, want ErrNotFound", id, err)
			}
			if err := store.Delete(ctx, id); !errors.Is(err, worksheets.ErrNotFound) {
				t.Errorf("Delete(%s) error = %v, want ErrNotFound", id, err)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.Delete(ctx, ids[1]); err != nil {
			t.Fatalf("Delete() failed: %v", err)
		}
		if _, err := store.Find(ctx, ids[1]); !errors.Is(err, worksheets.ErrNotFound) {
			t.Errorf("Find() after delete error = %v, want ErrNotFound", err)
		}
	})
}
