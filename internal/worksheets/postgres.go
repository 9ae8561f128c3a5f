package worksheets

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/worksheet-lab/pkg/query"
	"github.com/JaimeStill/worksheet-lab/pkg/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Migrations holds the PostgreSQL schema, under the "migrations" directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS

var projection = query.NewProjectionMap("public", "worksheets", "w").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Description").
	Project("category", "Category").
	Project("subject", "Subject").
	Project("tags", "Tags").
	Project("grade", "Grade").
	Project("age_group", "AgeGroup").
	Project("file_url", "FileURL").
	Project("file_name", "FileName").
	Project("original_name", "OriginalName").
	Project("content_type", "ContentType").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("thumbnail_url", "ThumbnailURL").
	Project("thumbnail_name", "ThumbnailName").
	Project("upload_date", "UploadDate")

var defaultSort = query.SortField{Field: "UploadDate", Descending: true}

const returning = `RETURNING id, title, description, category, subject, tags, grade, age_group,
	file_url, file_name, original_name, content_type, size_bytes, page_count,
	thumbnail_url, thumbnail_name, upload_date`

func scanWorksheet(s repository.Scanner) (Worksheet, error) {
	var (
		w  Worksheet
		id uuid.UUID
	)
	err := s.Scan(
		&id,
		&w.Title,
		&w.Description,
		&w.Category,
		&w.Subject,
		pgtype.NewMap().SQLScanner(&w.Tags),
		&w.Grade,
		&w.AgeGroup,
		&w.FileURL,
		&w.FileName,
		&w.OriginalName,
		&w.ContentType,
		&w.SizeBytes,
		&w.PageCount,
		&w.ThumbnailURL,
		&w.ThumbnailName,
		&w.UploadDate,
	)
	w.ID = id.String()
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return w, err
}

type postgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a Store backed by the worksheets table. The schema
// comes from Migrations.
func NewPostgresStore(db *sql.DB, logger *slog.Logger) Store {
	return &postgresStore{
		db:     db,
		logger: logger.With("store", "postgres"),
	}
}

func (s *postgresStore) Insert(ctx context.Context, w *Worksheet) (*Worksheet, error) {
	q := `INSERT INTO worksheets(id, title, description, category, subject, tags, grade, age_group,
		file_url, file_name, original_name, content_type, size_bytes, page_count,
		thumbnail_url, thumbnail_name, upload_date)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		` + returning

	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}

	out, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Worksheet, error) {
		return repository.QueryOne(ctx, tx, q, []any{
			uuid.New(), w.Title, w.Description, w.Category, w.Subject, tags, w.Grade, w.AgeGroup,
			w.FileURL, w.FileName, w.OriginalName, w.ContentType, w.SizeBytes, w.PageCount,
			w.ThumbnailURL, w.ThumbnailName, w.UploadDate,
		}, scanWorksheet)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &out, nil
}

func (s *postgresStore) Find(ctx context.Context, id string) (*Worksheet, error) {
	return s.find(ctx, s.db, id, false)
}

func (s *postgresStore) find(ctx context.Context, q repository.Querier, id string, lock bool) (*Worksheet, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	stmt, args := query.NewBuilder(projection).BuildSingle("ID", uid)
	if lock {
		stmt += " FOR UPDATE"
	}

	w, err := repository.QueryOne(ctx, q, stmt, args, scanWorksheet)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &w, nil
}

func (s *postgresStore) List(ctx context.Context, filters Filters, limit int) ([]Worksheet, error) {
	q, args := listQuery(filters, limit)
	items, err := repository.QueryMany(ctx, s.db, q, args, scanWorksheet)
	if err != nil {
		return nil, fmt.Errorf("query worksheets: %w", err)
	}
	return items, nil
}

// listQuery selects matching worksheets newest first. limit <= 0 is unbounded.
func listQuery(filters Filters, limit int) (string, []any) {
	return filters.Apply(query.NewBuilder(projection, defaultSort)).Build(limit)
}

func (s *postgresStore) Update(ctx context.Context, id string, cmd EditCommand) (*Worksheet, error) {
	if cmd.Empty() {
		return s.Find(ctx, id)
	}

	q := `UPDATE worksheets SET title = $1, description = $2, category = $3, tags = $4, grade = $5
		WHERE id = $6
		` + returning

	out, err := repository.WithTx(ctx, s.db, func(tx *sql.Tx) (Worksheet, error) {
		current, err := s.find(ctx, tx, id, true)
		if err != nil {
			return Worksheet{}, err
		}
		cmd.Apply(current)

		uid, _ := uuid.Parse(current.ID)
		return repository.QueryOne(ctx, tx, q, []any{
			current.Title, current.Description, current.Category, current.Tags, current.Grade, uid,
		}, scanWorksheet)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &out, nil
}

func (s *postgresStore) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	q := `DELETE FROM worksheets WHERE id = $1`
	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, q, uid)
	})
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}
