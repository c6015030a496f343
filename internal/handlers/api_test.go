package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maleehakhalid00-a11y/ToDo-App/internal/auth"
	dom "github.com/maleehakhalid00-a11y/ToDo-App/internal/domain"
	"github.com/maleehakhalid00-a11y/ToDo-App/internal/dto"
	"github.com/maleehakhalid00-a11y/ToDo-App/internal/repo"
	"github.com/maleehakhalid00-a11y/ToDo-App/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repos mimicking the Mongo error surface, so the full
// handler -> service -> repo path runs without a database.

type memUserRepo struct{ users map[string]dom.User }

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	u, ok := r.users[email]
	if !ok {
		return dom.User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func (r *memUserRepo) Create(_ context.Context, name, email, passwordHash string) (dom.User, error) {
	if _, ok := r.users[email]; ok {
		return dom.User{}, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	u := dom.User{ID: primitive.NewObjectID(), Name: name, Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	r.users[email] = u
	return u, nil
}

type memTodoRepo struct{ todos []dom.Todo }

func (r *memTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.todos = append(r.todos, t)
	return t, nil
}

func (r *memTodoRepo) GetByID(_ context.Context, userID, id primitive.ObjectID) (dom.Todo, error) {
	for _, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return dom.Todo{}, mongo.ErrNoDocuments
}

func (r *memTodoRepo) List(_ context.Context, userID primitive.ObjectID) ([]dom.Todo, error) {
	var list []dom.Todo
	for i := len(r.todos) - 1; i >= 0; i-- {
		if r.todos[i].UserID == userID {
			list = append(list, r.todos[i])
		}
	}
	return list, nil
}

func (r *memTodoRepo) Update(_ context.Context, userID, id primitive.ObjectID, patch repo.TodoPatch) (dom.Todo, error) {
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			if patch.Title != nil {
				t.Title = *patch.Title
			}
			if patch.Description != nil {
				t.Description = *patch.Description
			}
			if patch.Completed != nil {
				t.Completed = *patch.Completed
			}
			t.UpdatedAt = time.Now().UTC()
			r.todos[i] = t
			return t, nil
		}
	}
	return dom.Todo{}, mongo.ErrNoDocuments
}

func (r *memTodoRepo) Delete(_ context.Context, userID, id primitive.ObjectID) error {
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	userSvc := service.NewUserService(&memUserRepo{users: make(map[string]dom.User)})
	todoSvc := service.NewTodoService(&memTodoRepo{}, nil)

	r := gin.New()
	authHandler := NewAuthHandler(tokens, userSvc)
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	todoHandler := NewTodoHandler(todoSvc)
	protected := r.Group("/todos", auth.RequireToken(tokens))
	protected.POST("", todoHandler.Create)
	protected.GET("", todoHandler.List)
	protected.GET("/:id", todoHandler.GetByID)
	protected.PUT("/:id", todoHandler.Update)
	protected.DELETE("/:id", todoHandler.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func registerAndToken(t *testing.T, r *gin.Engine, name, email string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/auth/register", "", gin.H{"name": name, "email": email, "password": "pw123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAPI_RegisterThenLogin(t *testing.T) {
	r := newTestRouter(t)
	registerAndToken(t, r, "Ann", "ann@example.com")

	w := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{"email": "ann@example.com", "password": "pw123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	// The issued token is usable right away.
	list := doJSON(r, http.MethodGet, "/todos", resp.Token, nil)
	assert.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, "[]", list.Body.String())
}

func TestAPI_Register_DuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	registerAndToken(t, r, "Ann", "ann@example.com")

	w := doJSON(r, http.MethodPost, "/auth/register", "", gin.H{"name": "Ann 2", "email": "ann@example.com", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "User already exists")
}

func TestAPI_Register_MissingFields(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/auth/register", "", gin.H{"email": "ann@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Login_UniformInvalidCredentials(t *testing.T) {
	r := newTestRouter(t)
	registerAndToken(t, r, "Ann", "ann@example.com")

	unknown := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{"email": "ghost@example.com", "password": "pw123"})
	wrong := doJSON(r, http.MethodPost, "/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	// Identical body: no email enumeration.
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Contains(t, wrong.Body.String(), "Invalid credentials")
}

func TestAPI_MissingTokenOnEveryTodoRoute(t *testing.T) {
	r := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/todos"},
		{http.MethodPost, "/todos"},
		{http.MethodGet, "/todos/123"},
		{http.MethodPut, "/todos/123"},
		{http.MethodDelete, "/todos/123"},
	} {
		w := doJSON(r, tc.method, tc.path, "", gin.H{"title": "whatever"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), "No token, authorization denied")
	}
}

func TestAPI_CreateDefaults(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r, "Ann", "ann@example.com")

	w := doJSON(r, http.MethodPost, "/todos", token, gin.H{"title": "Buy milk"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var todo dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &todo))
	assert.NotEmpty(t, todo.ID)
	assert.NotEmpty(t, todo.User)
	assert.Equal(t, "Buy milk", todo.Title)
	assert.Equal(t, "", todo.Description)
	assert.False(t, todo.Completed)
	assert.False(t, todo.CreatedAt.IsZero())
}

func TestAPI_CreateEmptyTitle(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r, "Ann", "ann@example.com")

	for _, body := range []gin.H{{}, {"title": ""}, {"title": "   "}} {
		w := doJSON(r, http.MethodPost, "/todos", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Title field required")
	}
}

func TestAPI_ListNewestFirst(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r, "Ann", "ann@example.com")

	doJSON(r, http.MethodPost, "/todos", token, gin.H{"title": "T1"})
	doJSON(r, http.MethodPost, "/todos", token, gin.H{"title": "T2"})

	w := doJSON(r, http.MethodGet, "/todos", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "T2", list[0].Title)
	assert.Equal(t, "T1", list[1].Title)
}

func TestAPI_UpdateCompletedOnly(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r, "Ann", "ann@example.com")

	w := doJSON(r, http.MethodPost, "/todos", token, gin.H{"title": "Buy milk", "description": "2 liters"})
	var created dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodPut, "/todos/"+created.ID, token, gin.H{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.True(t, updated.Completed)
	assert.Equal(t, "Buy milk", updated.Title)
	assert.Equal(t, "2 liters", updated.Description)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.User, updated.User)
}

func TestAPI_CrossAccountIsolation(t *testing.T) {
	r := newTestRouter(t)
	tokenA := registerAndToken(t, r, "Ann", "ann@example.com")
	tokenB := registerAndToken(t, r, "Bob", "bob@example.com")

	w := doJSON(r, http.MethodPost, "/todos", tokenB, gin.H{"title": "Bob's secret"})
	var bobs dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bobs))

	// A uses B's real id: 404 everywhere, body never leaks the record.
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/todos/" + bobs.ID},
		{http.MethodPut, "/todos/" + bobs.ID},
		{http.MethodDelete, "/todos/" + bobs.ID},
	} {
		w := doJSON(r, tc.method, tc.path, tokenA, gin.H{"completed": true})
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s", tc.method, tc.path)
		assert.Contains(t, w.Body.String(), "Todo not found or unauthorized")
	}

	// B's record is intact.
	w = doJSON(r, http.MethodGet, "/todos/"+bobs.ID, tokenB, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// A's list stays empty.
	w = doJSON(r, http.MethodGet, "/todos", tokenA, nil)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestAPI_DeleteFlow(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r, "Ann", "ann@example.com")

	w := doJSON(r, http.MethodPost, "/todos", token, gin.H{"title": "Buy milk"})
	var created dto.TodoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodDelete, "/todos/"+created.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"msg":"Todo deleted"}`, w.Body.String())

	// Gone from the list, and a second delete is a 404.
	w = doJSON(r, http.MethodGet, "/todos", token, nil)
	assert.JSONEq(t, "[]", w.Body.String())

	w = doJSON(r, http.MethodDelete, "/todos/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_MalformedIDIs404(t *testing.T) {
	r := newTestRouter(t)
	token := registerAndToken(t, r, "Ann", "ann@example.com")

	w := doJSON(r, http.MethodPut, "/todos/not-an-id", token, gin.H{"completed": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
