package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/maleehakhalid00-a11y/ToDo-App/internal/cache"
	dom "github.com/maleehakhalid00-a11y/ToDo-App/internal/domain"
	"github.com/maleehakhalid00-a11y/ToDo-App/internal/repo"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNotFound covers absent todos and todos owned by another account alike.
	ErrNotFound   = errors.New("todo not found")
	ErrEmptyTitle = errors.New("title is required")
)

// TodoService implements owner-scoped CRUD over todos. userID is the hex account
// id extracted from the caller's token; ids are path parameters and may be
// arbitrary strings — anything that is not a well-formed id of an owned todo is
// a not-found.
type TodoService struct {
	repo  repo.TodoRepo
	cache *cache.TodoCache
	sf    singleflight.Group
}

// NewTodoService creates a TodoService. If c is nil, caching is disabled.
func NewTodoService(r repo.TodoRepo, c *cache.TodoCache) *TodoService {
	return &TodoService{repo: r, cache: c}
}

func (s *TodoService) Create(ctx context.Context, userID, title, desc string) (dom.Todo, error) {
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	if title == "" {
		return dom.Todo{}, ErrEmptyTitle
	}
	owner, err := ownerID(userID)
	if err != nil {
		return dom.Todo{}, err
	}
	t, err := s.repo.Create(ctx, dom.Todo{
		UserID:      owner,
		Title:       title,
		Description: desc,
	})
	if err != nil {
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TodoService) List(ctx context.Context, userID string) ([]dom.Todo, error) {
	owner, err := ownerID(userID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		v, err, _ := s.sf.Do("list:"+userID, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, owner)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Todo), nil
	}
	return s.repo.List(ctx, owner)
}

func (s *TodoService) GetByID(ctx context.Context, userID, id string) (dom.Todo, error) {
	owner, todoID, err := ownerAndTodoID(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	t, err := s.repo.GetByID(ctx, owner, todoID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	return t, nil
}

// Update applies only the provided fields in one atomic store write; ownership
// and identity are immutable.
func (s *TodoService) Update(ctx context.Context, userID, id string, title, desc *string, completed *bool) (dom.Todo, error) {
	owner, todoID, err := ownerAndTodoID(userID, id)
	if err != nil {
		return dom.Todo{}, err
	}
	patch := repo.TodoPatch{Completed: completed}
	if title != nil {
		v := strings.TrimSpace(*title)
		if v == "" {
			return dom.Todo{}, ErrEmptyTitle
		}
		patch.Title = &v
	}
	if desc != nil {
		v := strings.TrimSpace(*desc)
		patch.Description = &v
	}
	t, err := s.repo.Update(ctx, owner, todoID, patch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return dom.Todo{}, ErrNotFound
		}
		return dom.Todo{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	owner, todoID, err := ownerAndTodoID(userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, owner, todoID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *TodoService) invalidateCache(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}

// ownerID parses the account id carried by the token. It is always a hex
// ObjectID we issued, so a parse failure is an internal error, not a 404.
func ownerID(userID string) (primitive.ObjectID, error) {
	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("owner id: %w", err)
	}
	return owner, nil
}

func ownerAndTodoID(userID, id string) (primitive.ObjectID, primitive.ObjectID, error) {
	owner, err := ownerID(userID)
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, err
	}
	todoID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids are indistinguishable from missing todos.
		return primitive.NilObjectID, primitive.NilObjectID, ErrNotFound
	}
	return owner, todoID, nil
}
