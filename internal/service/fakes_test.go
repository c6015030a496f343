package service

import (
	"context"
	"sync"
	"time"

	dom "github.com/maleehakhalid00-a11y/ToDo-App/internal/domain"
	"github.com/maleehakhalid00-a11y/ToDo-App/internal/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memUserRepo is an in-memory UserRepo that mimics the Mongo error surface:
// missing documents return mongo.ErrNoDocuments, duplicate emails return a
// duplicate-key write error.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]dom.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]dom.User)}
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return dom.User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func (r *memUserRepo) Create(_ context.Context, name, email, passwordHash string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return dom.User{}, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
	}
	u := dom.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[email] = u
	return u, nil
}

// memTodoRepo is an in-memory TodoRepo. List returns newest-created-first
// (reverse insertion order, matching the createdAt sort).
type memTodoRepo struct {
	mu    sync.Mutex
	todos []dom.Todo
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{}
}

func (r *memTodoRepo) Create(_ context.Context, t dom.Todo) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.todos = append(r.todos, t)
	return t, nil
}

func (r *memTodoRepo) GetByID(_ context.Context, userID, id primitive.ObjectID) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return dom.Todo{}, mongo.ErrNoDocuments
}

func (r *memTodoRepo) List(_ context.Context, userID primitive.ObjectID) ([]dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []dom.Todo
	for i := len(r.todos) - 1; i >= 0; i-- {
		if r.todos[i].UserID == userID {
			list = append(list, r.todos[i])
		}
	}
	return list, nil
}

func (r *memTodoRepo) Update(_ context.Context, userID, id primitive.ObjectID, patch repo.TodoPatch) (dom.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			r.todos = append(r.todos[:i], r.todos[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}
