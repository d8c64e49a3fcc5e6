package complaint

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"complaint-portal/internal/common/database"
	"complaint-portal/internal/common/errors"
	"complaint-portal/internal/models"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS complaints (
	id           TEXT PRIMARY KEY,
	category     TEXT NOT NULL,
	name         TEXT NOT NULL,
	roll_number  TEXT NOT NULL,
	stream       TEXT NOT NULL,
	phone        TEXT NOT NULL,
	email        TEXT NOT NULL,
	lab_number   TEXT NOT NULL DEFAULT '',
	complaint    TEXT NOT NULL,
	photo_base64 TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'pending',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
)`

const selectColumns = `id, category, name, roll_number, stream, phone, email, lab_number,
	complaint, photo_base64, status, created_at, updated_at`

// Repository persists complaints in Postgres.
type Repository struct {
	db database.Querier
}

func NewRepository(db database.Querier) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the complaints table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return errors.NewQueryExecutionFailedError("ensure_schema", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, c *models.Complaint) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO complaints (
			id, category, name, roll_number, stream, phone, email,
			lab_number, complaint, photo_base64, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		c.ID,
		string(c.Category),
		c.Name,
		c.RollNumber,
		c.Stream,
		c.Phone,
		c.Email,
		c.LabNumber,
		c.Description,
		c.PhotoBase64,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return storageError("insert", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM complaints WHERE id = $1`, id)
	c, err := scanComplaint(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewComplaintNotFoundError(id)
		}
		return nil, storageError("get", err)
	}
	return c, nil
}

// List returns complaints newest first. An empty category lists every category.
func (r *Repository) List(ctx context.Context, category models.Category) ([]*models.Complaint, error) {
	query := `SELECT ` + selectColumns + ` FROM complaints`
	var args []interface{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, string(category))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("list", err)
	}
	defer rows.Close()

	var out []*models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, storageError("list", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("list", err)
	}
	return out, nil
}

// UpdateStatus sets the status and returns the updated row.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status models.Status, at time.Time) (*models.Complaint, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE complaints SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+selectColumns,
		id, string(status), at,
	)
	c, err := scanComplaint(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewComplaintNotFoundError(id)
		}
		return nil, storageError("update_status", err)
	}
	return c, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanComplaint(s scanner) (*models.Complaint, error) {
	var (
		c        models.Complaint
		category string
		status   string
	)
	err := s.Scan(
		&c.ID, &category, &c.Name, &c.RollNumber, &c.Stream, &c.Phone, &c.Email,
		&c.LabNumber, &c.Description, &c.PhotoBase64, &status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Category = models.Category(category)
	c.Status = models.Status(status)
	return &c, nil
}

func storageError(op string, err error) *errors.StandardError {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewQueryTimeoutError(op)
	}
	if op == "insert" {
		return errors.NewDatabaseInsertFailedError(fmt.Errorf("complaints: %w", err))
	}
	return errors.NewQueryExecutionFailedError(op, err)
}
