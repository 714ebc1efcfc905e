package httpapi

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookInput() gin.H {
	return gin.H{
		"title":       "Organic Chemistry",
		"description": "Carbon compounds and their reactions",
		"category":    "Science",
		"folder":      "chem",
		"pages":       []string{"/books/chem/1.jpg", "/books/chem/2.jpg"},
	}
}

func TestBooks_AdminLifecycle(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	student := env.register(t, "student@bugema.ac.ug")

	rec := env.do(t, http.MethodPost, "/api/books", bookInput(), student)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/books", bookInput(), admin)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	book := decode(t, rec)["book"].(map[string]any)
	id := book["id"].(string)
	assert.Equal(t, "/books/chem/1.jpg", book["coverImage"])

	rec = env.do(t, http.MethodPut, "/api/books/"+id, gin.H{"title": "Organic Chemistry II"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	book = decode(t, rec)["book"].(map[string]any)
	assert.Equal(t, "Organic Chemistry II", book["title"])
	assert.Equal(t, "Science", book["category"])

	rec = env.do(t, http.MethodPatch, "/api/books/"+id+"/visibility", gin.H{}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/books/"+id+"/visibility", gin.H{"isVisible": false}, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/books/"+id, nil, student)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/books/"+id, nil, admin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/books/"+id, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Book removed", decode(t, rec)["message"])

	rec = env.do(t, http.MethodDelete, "/api/books/"+id, nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBooks_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)

	in := bookInput()
	in["title"] = "X"
	in["pages"] = []string{"cover.png"}

	rec := env.do(t, http.MethodPost, "/api/books", in, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode(t, rec)["errors"].(map[string]any)
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "pages[0]")
}

func TestBooks_ListHidesHiddenFromStudents(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, "Calculus", 3, true)
	env.seedBook(t, "Draft Notes", 2, false)
	admin := env.admin(t)
	student := env.register(t, "student@bugema.ac.ug")

	count := func(cookies []*http.Cookie, query string) int {
		rec := env.do(t, http.MethodGet, "/api/books"+query, nil, cookies)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Contains(t, body, "categories")
		return len(body["books"].([]any))
	}

	assert.Equal(t, 1, count(nil, ""))
	assert.Equal(t, 1, count(student, "?includeHidden=true"))
	assert.Equal(t, 1, count(admin, ""))
	assert.Equal(t, 2, count(admin, "?includeHidden=true"))
	assert.Equal(t, 1, count(admin, "?includeHidden=true&search=draft"))
	assert.Equal(t, 0, count(nil, "?search=draft"))
}

func TestBooks_Pages(t *testing.T) {
	env := newTestEnv(t)
	book := env.seedBook(t, "Calculus", 2, true)

	rec := env.do(t, http.MethodGet, "/api/books/"+book.ID+"/pages", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{
		"https://static.example.com/books/f/1.jpg",
		"https://static.example.com/books/f/2.jpg",
	}, decode(t, rec)["pages"])
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	env.seedBook(t, "Calculus", 1, true)
	admin := env.admin(t)

	rec := env.do(t, http.MethodGet, "/api/categories", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Science"}, decode(t, rec)["categories"])

	rec = env.do(t, http.MethodPost, "/api/categories", gin.H{"currentName": "Science", "newName": "Mathematics"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Mathematics", decode(t, rec)["category"])

	rec = env.do(t, http.MethodDelete, "/api/categories", nil, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/categories?name=Mathematics", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Uncategorized", decode(t, rec)["category"])

	rec = env.do(t, http.MethodGet, "/api/categories", nil, nil)
	assert.Equal(t, []any{"Uncategorized"}, decode(t, rec)["categories"])
}

func TestUsers_UpdateRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	env.register(t, "student@bugema.ac.ug")

	rec := env.do(t, http.MethodGet, "/api/users", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var studentID string
	for _, u := range decode(t, rec)["users"].([]any) {
		m := u.(map[string]any)
		assert.NotContains(t, m, "passwordHash")
		if m["email"] == "student@bugema.ac.ug" {
			studentID = m["id"].(string)
		}
	}
	require.NotEmpty(t, studentID)

	rec = env.do(t, http.MethodPatch, "/api/users", gin.H{"userId": studentID, "role": "ADMIN"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADMIN", decode(t, rec)["user"].(map[string]any)["role"])

	rec = env.do(t, http.MethodPatch, "/api/users", gin.H{"userId": studentID, "role": "LIBRARIAN"}, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/users", gin.H{"userId": "missing", "role": "STUDENT"}, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
