package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/google/uuid"
)

const progressColumns = `id, user_id, book_id, current_page, total_pages, completed, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, p *models.ReadingProgress) (*models.ReadingProgress, error) {
	if !validIDs(p.UserID, p.BookID) {
		return nil, common.NewValidationError("bookId", "invalid id")
	}

	query :=
		`INSERT INTO reading_progress (user_id, book_id, current_page, total_pages, completed)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, book_id) DO UPDATE
		 SET current_page = EXCLUDED.current_page,
		     total_pages = EXCLUDED.total_pages,
		     completed = EXCLUDED.completed,
		     updated_at = now()
		 RETURNING ` + progressColumns

	row := r.db.QueryRowContext(ctx, query, p.UserID, p.BookID, p.CurrentPage, p.TotalPages, p.Completed)
	return scanProgress(row)
}

func (r *PostgresRepository) Get(ctx context.Context, userID, bookID string) (*models.ReadingProgress, error) {
	if !validIDs(userID, bookID) {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + progressColumns + ` FROM reading_progress WHERE user_id = $1 AND book_id = $2`

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, userID, bookID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]models.ReadingProgress, error) {
	result := make([]models.ReadingProgress, 0)
	if !validIDs(userID) {
		return result, nil
	}

	query := `SELECT ` + progressColumns + ` FROM reading_progress WHERE user_id = $1 ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountCompleted(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reading_progress WHERE completed`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func scanProgress(s dbx.Scanner) (*models.ReadingProgress, error) {
	var p models.ReadingProgress
	err := s.Scan(&p.ID, &p.UserID, &p.BookID, &p.CurrentPage, &p.TotalPages, &p.Completed, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &p, nil
}

func validIDs(ids ...string) bool {
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return false
		}
	}
	return true
}
