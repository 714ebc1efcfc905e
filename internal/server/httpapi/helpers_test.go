package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/booklib/internal/logging"
	"github.com/dmitrijs2005/booklib/internal/server/auth"
	"github.com/dmitrijs2005/booklib/internal/server/models"
	"github.com/dmitrijs2005/booklib/internal/server/pages"
	"github.com/dmitrijs2005/booklib/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/booklib/internal/server/services"
	"github.com/dmitrijs2005/booklib/internal/server/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	mem    *repomanager.MemoryRepositoryManager
	users  *services.UserService
	tokens *auth.TokenService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mem := repomanager.NewMemoryRepositoryManager()
	store := repomanager.NewLazyWith("memory://", func(context.Context, string) (repomanager.RepositoryManager, error) {
		return mem, nil
	}, logging.NewNop())

	tokens, err := auth.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	logger := logging.NewNop()

	users := services.NewUserService(store, hasher, logger)
	h := NewHandler(
		services.NewAuthService(store, tokens, hasher, logger),
		users,
		services.NewProgressService(store, logger),
		services.NewBookService(store, pages.NewStaticResolver("https://static.example.com"), logger),
		session.NewTransport(session.Options{AccessMaxAge: 15 * time.Minute, RefreshMaxAge: 7 * 24 * time.Hour}),
		logger,
	)

	return &testEnv{router: NewRouter(h), mem: mem, users: users, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register signs up a student and returns the session cookies.
func (e *testEnv) register(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Test User", "email": email, "password": "secret123",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

// admin creates an admin account and logs it in.
func (e *testEnv) admin(t *testing.T) []*http.Cookie {
	t.Helper()
	_, err := e.users.CreateAdmin(context.Background(), services.RegisterInput{
		Name: "Librarian", Email: "admin@bugema.ac.ug", Password: "adminpass",
	})
	require.NoError(t, err)

	rec := e.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "admin@bugema.ac.ug", "password": "adminpass",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func (e *testEnv) seedBook(t *testing.T, title string, pageCount int, visible bool) *models.Book {
	t.Helper()
	b := &models.Book{Title: title, Category: "Science", Folder: "f", IsVisible: visible, Pages: []string{}}
	for i := 1; i <= pageCount; i++ {
		b.Pages = append(b.Pages, "/books/f/"+strconv.Itoa(i)+".jpg")
	}
	created, err := e.mem.Books().Create(context.Background(), b)
	require.NoError(t, err)
	return created
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func cookieNamed(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func newRequest(method, path string) (*http.Request, *httptest.ResponseRecorder) {
	return httptest.NewRequest(method, path, nil), httptest.NewRecorder()
}
