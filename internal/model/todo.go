package model

import (
	"encoding/json"
	"math"
	"time"
)

// TodoStatus is the workflow state of a todo.
type TodoStatus string

// Todo status values. The strings are persisted and returned over the API.
const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusCompleted  TodoStatus = "completed"
	TodoStatusCancelled  TodoStatus = "cancelled"
)

// TodoStatuses lists every status in declaration order.
var TodoStatuses = []TodoStatus{
	TodoStatusPending,
	TodoStatusInProgress,
	TodoStatusCompleted,
	TodoStatusCancelled,
}

// Valid reports whether s is a known status.
func (s TodoStatus) Valid() bool {
	for _, v := range TodoStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TodoPriority ranks todos.
type TodoPriority string

// Todo priority values.
const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
	TodoPriorityUrgent TodoPriority = "urgent"
)

// TodoPriorities lists every priority in declaration order.
var TodoPriorities = []TodoPriority{
	TodoPriorityLow,
	TodoPriorityMedium,
	TodoPriorityHigh,
	TodoPriorityUrgent,
}

// Valid reports whether p is a known priority.
func (p TodoPriority) Valid() bool {
	for _, v := range TodoPriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Field bounds shared by validation and the schema.
const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 1000
)

// Todo is a task item owned by a single user.
type Todo struct {
	ID          string       `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Description *string      `json:"description" db:"description"`
	Status      TodoStatus   `json:"status" db:"status"`
	Priority    TodoPriority `json:"priority" db:"priority"`
	DueDate     *time.Time   `json:"due_date" db:"due_date"`
	IsCompleted bool         `json:"is_completed" db:"is_completed"`
	OwnerID     string       `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   *time.Time   `json:"updated_at" db:"updated_at"`
}

// NewTodo holds the caller-supplied fields of a todo being created.
// Zero Status and Priority fall back to pending and medium.
type NewTodo struct {
	Title       string       `json:"title" binding:"required,max=200"`
	Description *string      `json:"description" binding:"omitempty,max=1000"`
	Status      TodoStatus   `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority    TodoPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	DueDate     *time.Time   `json:"due_date"`
	IsCompleted bool         `json:"is_completed"`
}

// UnmarshalJSON reads due_date with ParseTimestamp so request bodies accept
// the same forms as the listing filters.
func (n *NewTodo) UnmarshalJSON(data []byte) error {
	type plain NewTodo
	aux := struct {
		*plain
		DueDate *string `json:"due_date"`
	}{plain: (*plain)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	n.DueDate = nil
	if aux.DueDate != nil {
		due, err := parseDueDate(*aux.DueDate)
		if err != nil {
			return err
		}
		n.DueDate = due
	}
	return nil
}

// TodoPatch is a partial update. Only fields with Set are applied; Null
// marks a field explicitly sent as null.
type TodoPatch struct {
	Title       Optional[string]       `json:"title"`
	Description Optional[*string]      `json:"description"`
	Status      Optional[TodoStatus]   `json:"status"`
	Priority    Optional[TodoPriority] `json:"priority"`
	DueDate     Optional[*time.Time]   `json:"due_date"`
	IsCompleted Optional[bool]         `json:"is_completed"`
}

// UnmarshalJSON reads due_date with ParseTimestamp.
func (p *TodoPatch) UnmarshalJSON(data []byte) error {
	type plain TodoPatch
	aux := struct {
		*plain
		DueDate Optional[string] `json:"due_date"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	p.DueDate = Optional[*time.Time]{Set: aux.DueDate.Set, Null: aux.DueDate.Null}
	if aux.DueDate.Set && !aux.DueDate.Null {
		due, err := parseDueDate(aux.DueDate.Value)
		if err != nil {
			return err
		}
		p.DueDate.Value = due
	}
	return nil
}

// Empty reports whether no field is present.
func (p TodoPatch) Empty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set &&
		!p.Priority.Set && !p.DueDate.Set && !p.IsCompleted.Set
}

// Apply writes the present fields onto t and reconciles status with
// is_completed. It reports whether any stored value changed. The caller
// owns updated_at.
func (p TodoPatch) Apply(t *Todo) bool {
	before := *t

	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
	if p.Priority.Set {
		t.Priority = p.Priority.Value
	}
	if p.DueDate.Set {
		t.DueDate = p.DueDate.Value
	}
	if p.IsCompleted.Set {
		t.IsCompleted = p.IsCompleted.Value
		if t.IsCompleted {
			t.Status = TodoStatusCompleted
		} else if t.Status == TodoStatusCompleted {
			t.Status = TodoStatusPending
		}
	}

	return !sameTodoFields(before, *t)
}

func sameTodoFields(a, b Todo) bool {
	return a.Title == b.Title &&
		equalPtr(a.Description, b.Description) &&
		a.Status == b.Status &&
		a.Priority == b.Priority &&
		equalTimePtr(a.DueDate, b.DueDate) &&
		a.IsCompleted == b.IsCompleted
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// TodoFilter narrows a todo listing. Nil fields are not applied; the
// applied ones are combined with AND.
type TodoFilter struct {
	Status      *TodoStatus
	Priority    *TodoPriority
	IsCompleted *bool
	Search      *string // case-sensitive substring of title or description
	DueBefore   *time.Time
	DueAfter    *time.Time
	Page        int
	PerPage     int
}

// Pagination bounds for todo listings.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Offset returns the number of rows skipped before the requested page. It
// saturates at math.MaxInt instead of overflowing.
func (f TodoFilter) Offset() int {
	if f.Page <= 1 || f.PerPage <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt/f.PerPage {
		return math.MaxInt
	}
	return (f.Page - 1) * f.PerPage
}

// TodoPage is one page of a filtered listing.
type TodoPage struct {
	Todos   []Todo `json:"todos"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	PerPage int    `json:"per_page"`
	HasNext bool   `json:"has_next"`
	HasPrev bool   `json:"has_prev"`
}

// NewTodoPage wraps a page of todos with its navigation flags.
func NewTodoPage(todos []Todo, total, page, perPage int) TodoPage {
	if todos == nil {
		todos = []Todo{}
	}
	pages := 0
	if perPage > 0 {
		pages = total / perPage
		if total%perPage != 0 {
			pages++
		}
	}
	return TodoPage{
		Todos:   todos,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}
