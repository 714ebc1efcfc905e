package books

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/dbx"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/google/uuid"
)

const bookColumns = `id, title, description, category, folder, pages, cover_image, is_visible, created_by, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, filter models.BookFilter) ([]models.Book, error) {
	var (
		conds []string
		args  []any
	)
	if !filter.IncludeHidden {
		conds = append(conds, "is_visible")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d)", n, n, n))
	}

	query := `SELECT ` + bookColumns + ` FROM books`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return r.getOne(ctx, r.db, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Book, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []models.Book{}, nil
	}

	data, err := json.Marshal(valid)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + bookColumns + ` FROM books
		 WHERE id IN (SELECT jsonb_array_elements_text($1::jsonb)::uuid)`
	return r.query(ctx, query, string(data))
}

func (r *PostgresRepository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	pages, err := json.Marshal(nonNilPages(book.Pages))
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO books (title, description, category, folder, pages, cover_image, is_visible, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		book.Title, book.Description, book.Category, book.Folder, pages,
		book.CoverImage, book.IsVisible, nullableUUID(book.CreatedBy)).
		Scan(&book.ID, &book.CreatedAt, &book.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return book, nil
}

// Update runs inside its own transaction when the repository holds a *sql.DB;
// when it already holds a *sql.Tx the caller's transaction is used.
func (r *PostgresRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	var result *models.Book
	run := func(ctx context.Context, tx dbx.DBTX) error {
		book, err := r.getOne(ctx, tx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return err
		}
		if err := fn(book); err != nil {
			return err
		}

		pages, err := json.Marshal(nonNilPages(book.Pages))
		if err != nil {
			return err
		}
		query :=
			`UPDATE books
			 SET title = $2, description = $3, category = $4, folder = $5, pages = $6,
			     cover_image = $7, is_visible = $8, updated_at = now()
			 WHERE id = $1
			 RETURNING ` + bookColumns
		result, err = r.getOne(ctx, tx, query, id,
			book.Title, book.Description, book.Category, book.Folder, pages, book.CoverImage, book.IsVisible)
		return err
	}

	var err error
	if beginner, ok := r.db.(dbx.TxBeginner); ok {
		err = dbx.WithTx(ctx, beginner, nil, run)
	} else {
		err = run(ctx, r.db)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT category FROM books ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) RenameCategory(ctx context.Context, from, to string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE books SET category = $2, updated_at = now() WHERE category = $1`, from, to)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books`)
}

func (r *PostgresRepository) CountVisible(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM books WHERE is_visible`)
}

func (r *PostgresRepository) count(ctx context.Context, query string) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Book, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, db dbx.DBTX, query string, args ...any) (*models.Book, error) {
	b, err := scanBook(db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	return b, nil
}

func scanBook(s dbx.Scanner) (*models.Book, error) {
	var (
		b         models.Book
		pages     []byte
		createdBy sql.NullString
	)
	err := s.Scan(&b.ID, &b.Title, &b.Description, &b.Category, &b.Folder, &pages,
		&b.CoverImage, &b.IsVisible, &createdBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(pages, &b.Pages); err != nil {
		return nil, fmt.Errorf("db error: book %s pages: %w", b.ID, err)
	}
	b.Pages = nonNilPages(b.Pages)
	b.CreatedBy = createdBy.String
	return &b, nil
}

func nonNilPages(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}

func nullableUUID(id string) any {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	return id
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
