package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brainstack/study-content/pkg/studycontent"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements studycontent.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// handlePostgresError maps driver errors to something callers can act on
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("content item already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateItem(ctx context.Context, item *studycontent.ContentItem) error {
	query := `
		INSERT INTO content_item (
			id, branch, semester, subject, kind,
			file_name, object_key, file_url, file_size, mime_type,
			video_title, video_url, video_id,
			uploaded_by, upload_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.db.Exec(ctx, query,
		item.ID, item.Branch, item.Semester, item.Subject, string(item.Kind),
		item.FileName, item.ObjectKey, item.FileURL, item.FileSize, item.MimeType,
		item.VideoTitle, item.VideoURL, item.VideoID,
		item.UploadedBy, item.UploadDate)

	if err != nil {
		return r.handlePostgresError("create item", err)
	}

	return nil
}

func (r *Repository) GetItem(ctx context.Context, id uuid.UUID) (*studycontent.ContentItem, error) {
	query := `
		SELECT id, branch, semester, subject, kind,
		       file_name, object_key, file_url, file_size, mime_type,
		       video_title, video_url, video_id,
		       uploaded_by, upload_date
		FROM content_item WHERE id = $1`

	item, err := scanItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, studycontent.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get item", err)
	}

	return item, nil
}

func (r *Repository) ListItems(ctx context.Context, filters studycontent.ListContentFilters) ([]*studycontent.ContentItem, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, branch, semester, subject, kind,
		       file_name, object_key, file_url, file_size, mime_type,
		       video_title, video_url, video_id,
		       uploaded_by, upload_date
		FROM content_item`)

	var conds []string
	var args []interface{}
	addCond := func(column string, value interface{}) {
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filters.Kind != nil {
		addCond("kind", string(*filters.Kind))
	}
	if filters.Subject != nil {
		addCond("subject", *filters.Subject)
	}
	if filters.Branch != nil {
		addCond("branch", *filters.Branch)
	}
	if filters.Semester != nil {
		addCond("semester", *filters.Semester)
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY upload_date DESC")

	if filters.Limit != nil {
		args = append(args, *filters.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	if filters.Offset != nil {
		args = append(args, *filters.Offset)
		sb.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, r.handlePostgresError("list items", err)
	}
	defer rows.Close()

	var items []*studycontent.ContentItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, r.handlePostgresError("list items", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list items", err)
	}

	return items, nil
}

func (r *Repository) DeleteItem(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content_item WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete item", err)
	}
	if tag.RowsAffected() == 0 {
		return studycontent.ErrContentNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*studycontent.ContentItem, error) {
	var item studycontent.ContentItem
	var kind string
	err := row.Scan(
		&item.ID, &item.Branch, &item.Semester, &item.Subject, &kind,
		&item.FileName, &item.ObjectKey, &item.FileURL, &item.FileSize, &item.MimeType,
		&item.VideoTitle, &item.VideoURL, &item.VideoID,
		&item.UploadedBy, &item.UploadDate)
	if err != nil {
		return nil, err
	}
	item.Kind = studycontent.ContentKind(kind)
	return &item, nil
}
