// Package todo validates todo requests and runs them against the store on
// behalf of a single owner.
package todo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/store"
	"github.com/nhle/todo-service/internal/validate"
)

// Bounds of the due-soon window, in hours.
const (
	DefaultDueSoonHours = 24
	MinDueSoonHours     = 1
	MaxDueSoonHours     = 168
)

// Rules for patch fields, matching the binding tags on model.NewTodo.
const (
	titleRule       = "required,max=200"
	descriptionRule = "max=1000"
	statusRule      = "oneof=pending in_progress completed cancelled"
	priorityRule    = "oneof=low medium high urgent"
)

// Service exposes owner-scoped todo operations.
type Service struct {
	todos store.TodoStore
	now   func() time.Time
}

// NewService returns a Service over todos.
func NewService(todos store.TodoStore, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{todos: todos, now: now}
}

// Create validates in and stores it for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in model.NewTodo) (*model.Todo, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	return s.todos.CreateTodo(ctx, ownerID, in)
}

// Get returns ownerID's todo or apperr.ErrNotFound.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return notFound(s.todos.GetTodo(ctx, id, ownerID))
}

// List returns one page of ownerID's todos. Zero Page and PerPage take the
// defaults.
func (s *Service) List(ctx context.Context, ownerID string, filter model.TodoFilter) (model.TodoPage, error) {
	if filter.Page == 0 {
		filter.Page = model.DefaultPage
	}
	if filter.PerPage == 0 {
		filter.PerPage = model.DefaultPerPage
	}
	if filter.Page < 1 {
		return model.TodoPage{}, apperr.Validation("page must be at least 1")
	}
	if filter.PerPage < 1 || filter.PerPage > model.MaxPerPage {
		return model.TodoPage{}, apperr.Validation(fmt.Sprintf("per_page must be between 1 and %d", model.MaxPerPage))
	}
	if filter.Status != nil {
		if err := validate.Field("status", string(*filter.Status), statusRule); err != nil {
			return model.TodoPage{}, err
		}
	}
	if filter.Priority != nil {
		if err := validate.Field("priority", string(*filter.Priority), priorityRule); err != nil {
			return model.TodoPage{}, err
		}
	}

	todos, total, err := s.todos.ListTodos(ctx, ownerID, filter)
	if err != nil {
		return model.TodoPage{}, err
	}
	return model.NewTodoPage(todos, total, filter.Page, filter.PerPage), nil
}

// Update applies patch to ownerID's todo.
func (s *Service) Update(ctx context.Context, id, ownerID string, patch model.TodoPatch) (*model.Todo, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return notFound(s.todos.UpdateTodo(ctx, id, ownerID, patch))
}

// Delete removes ownerID's todo or returns apperr.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	deleted, err := s.todos.DeleteTodo(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperr.ErrNotFound
	}
	return nil
}

// Complete marks ownerID's todo completed.
func (s *Service) Complete(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return notFound(s.todos.MarkTodoCompleted(ctx, id, ownerID))
}

// Reopen marks ownerID's todo pending.
func (s *Service) Reopen(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return notFound(s.todos.MarkTodoPending(ctx, id, ownerID))
}

// Overdue lists ownerID's incomplete todos whose due date has passed.
func (s *Service) Overdue(ctx context.Context, ownerID string) ([]model.Todo, error) {
	return s.todos.OverdueTodos(ctx, ownerID, s.now().UTC())
}

// DueSoon lists ownerID's incomplete todos due within the next hours.
func (s *Service) DueSoon(ctx context.Context, ownerID string, hours int) ([]model.Todo, error) {
	if hours < MinDueSoonHours || hours > MaxDueSoonHours {
		return nil, apperr.Validation(fmt.Sprintf("hours must be between %d and %d", MinDueSoonHours, MaxDueSoonHours))
	}
	now := s.now().UTC()
	return s.todos.DueSoonTodos(ctx, ownerID, now, now.Add(time.Duration(hours)*time.Hour))
}

// Stats summarizes ownerID's todos.
func (s *Service) Stats(ctx context.Context, ownerID string) (model.TodoStats, error) {
	return s.todos.TodoStats(ctx, ownerID, s.now().UTC())
}

func notFound(todo *model.Todo, err error) (*model.Todo, error) {
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.ErrNotFound
	}
	return todo, err
}

func validatePatch(p model.TodoPatch) error {
	if p.Title.Set {
		if p.Title.Null {
			return apperr.Validation("title cannot be null")
		}
		if err := validate.Field("title", p.Title.Value, titleRule); err != nil {
			return err
		}
	}
	if p.Description.Set && p.Description.Value != nil {
		if err := validate.Field("description", *p.Description.Value, descriptionRule); err != nil {
			return err
		}
	}
	if p.Status.Set {
		if p.Status.Null {
			return apperr.Validation("status cannot be null")
		}
		if err := validate.Field("status", string(p.Status.Value), statusRule); err != nil {
			return err
		}
	}
	if p.Priority.Set {
		if p.Priority.Null {
			return apperr.Validation("priority cannot be null")
		}
		if err := validate.Field("priority", string(p.Priority.Value), priorityRule); err != nil {
			return err
		}
	}
	if p.IsCompleted.Set && p.IsCompleted.Null {
		return apperr.Validation("is_completed cannot be null")
	}
	return nil
}
