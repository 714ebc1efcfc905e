package books

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/booklib/internal/common"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBookID = "3d5e7f90-1a2b-4c3d-8e9f-a0b1c2d3e4f5"

var bookCols = []string{"id", "title", "description", "category", "folder", "pages", "cover_image", "is_visible", "created_by", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func bookRow(rows *sqlmock.Rows, id, title string, visible bool) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, title, "A long enough description", "Science", "physics",
		[]byte(`["/books/physics/1.jpg","/books/physics/2.jpg"]`), "/books/physics/1.jpg", visible, nil, now, now)
}

func TestList_VisibleOnlyByDefault(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+books\s+WHERE\s+is_visible\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WithoutArgs().
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), testBookID, "Physics", true))

	got, err := repo.List(context.Background(), models.BookFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"/books/physics/1.jpg", "/books/physics/2.jpg"}, got[0].Pages)
	assert.Empty(t, got[0].CreatedBy)
}

func TestList_AllFilters(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+books\s+WHERE\s+category\s*=\s*\$1\s+AND\s+\(title\s+ILIKE\s+\$2\s+OR\s+description\s+ILIKE\s+\$2\s+OR\s+category\s+ILIKE\s+\$2\)`).
		WithArgs("Science", `%100\%%`).
		WillReturnRows(sqlmock.NewRows(bookCols))

	got, err := repo.List(context.Background(), models.BookFilter{Category: "Science", Search: "100%", IncludeHidden: true})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+books\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs(testBookID).
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), testBookID, "Physics", false))

	got, err := repo.GetByID(context.Background(), testBookID)
	require.NoError(t, err)
	assert.False(t, got.IsVisible)
	assert.Len(t, got.Pages, 2)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+books`).WithArgs(testBookID).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), testBookID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), "64b7f0c2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByIDs_SkipsMalformed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+books\s+WHERE\s+id\s+IN\s+\(SELECT\s+jsonb_array_elements_text`).
		WithArgs(`["` + testBookID + `"]`).
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), testBookID, "Physics", true))

	got, err := repo.GetByIDs(context.Background(), []string{testBookID, "bogus"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	none, err := repo.GetByIDs(context.Background(), []string{"bogus"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	creator := "0b6f7c9e-2f7a-4c55-9d0b-3b2a4d1e8f10"
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+books\s*\(title,\s*description,\s*category,\s*folder,\s*pages,\s*cover_image,\s*is_visible,\s*created_by\)`).
		WithArgs("Physics", "", "Science", "physics", []byte(`["/books/physics/1.jpg"]`), "/books/physics/1.jpg", true, creator).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(testBookID, now, now))

	b, err := repo.Create(context.Background(), &models.Book{
		Title: "Physics", Category: "Science", Folder: "physics",
		Pages: []string{"/books/physics/1.jpg"}, CoverImage: "/books/physics/1.jpg",
		IsVisible: true, CreatedBy: creator,
	})
	require.NoError(t, err)
	assert.Equal(t, testBookID, b.ID)
}

func TestUpdate_RunsInTransaction(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)FROM\s+books\s+WHERE\s+id\s*=\s*\$1\s+FOR\s+UPDATE`).
		WithArgs(testBookID).
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), testBookID, "Physics", true))
	mock.ExpectQuery(`(?s)^UPDATE\s+books\s+SET\s+title\s*=\s*\$2`).
		WithArgs(testBookID, "Physics II", sqlmock.AnyArg(), "Science", "physics", sqlmock.AnyArg(), sqlmock.AnyArg(), true).
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), testBookID, "Physics II", true))
	mock.ExpectCommit()

	got, err := repo.Update(context.Background(), testBookID, func(b *models.Book) error {
		b.Title = "Physics II"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Physics II", got.Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_CallbackErrorRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR\s+UPDATE`).
		WithArgs(testBookID).
		WillReturnRows(bookRow(sqlmock.NewRows(bookCols), testBookID, "Physics", true))
	mock.ExpectRollback()

	invalid := errors.New("invalid")
	_, err := repo.Update(context.Background(), testBookID, func(*models.Book) error { return invalid })
	assert.ErrorIs(t, err, invalid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_MissingBook(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR\s+UPDATE`).WithArgs(testBookID).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Update(context.Background(), testBookID, func(*models.Book) error { return nil })
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+books\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(testBookID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), testBookID))

	mock.ExpectExec(`DELETE\s+FROM\s+books`).
		WithArgs(testBookID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), testBookID), common.ErrorNotFound)
}

func TestCategoriesAndRename(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+DISTINCT\s+category\s+FROM\s+books\s+ORDER\s+BY\s+category`).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("History").AddRow("Science"))

	cats, err := repo.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"History", "Science"}, cats)

	mock.ExpectExec(`UPDATE\s+books\s+SET\s+category\s*=\s*\$2,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+category\s*=\s*\$1`).
		WithArgs("Science", "Physics").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RenameCategory(context.Background(), "Science", "Physics")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCounts(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+books$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(`SELECT\s+COUNT\(\*\)\s+FROM\s+books\s+WHERE\s+is_visible$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	visible, err := repo.CountVisible(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Equal(t, int64(3), visible)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now \\o/`, escapeLike(`50% off_now \o/`))
}
