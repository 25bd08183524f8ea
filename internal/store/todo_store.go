package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/nhle/todo-service/internal/model"
)

const todoColumns = `id, owner_id, title, description, status, priority,
	due_date, is_completed, created_at, updated_at`

// CreateTodo inserts a new todo for ownerID. Zero status and priority
// default to pending and medium.
func (s *SQLiteStore) CreateTodo(
	ctx context.Context,
	ownerID string,
	in model.NewTodo,
) (*model.Todo, error) {
	todo := model.Todo{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		IsCompleted: in.IsCompleted,
		CreatedAt:   s.timestamp(),
	}
	if todo.Status == "" {
		todo.Status = model.TodoStatusPending
	}
	if todo.Priority == "" {
		todo.Priority = model.TodoPriorityMedium
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO todos (`+todoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		todo.ID, todo.OwnerID, todo.Title, todo.Description,
		string(todo.Status), string(todo.Priority),
		formatTimePtr(todo.DueDate), boolToInt(todo.IsCompleted),
		formatTime(todo.CreatedAt), nil,
	)
	if err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	return s.GetTodo(ctx, todo.ID, ownerID)
}

// GetTodo retrieves a todo by ID if it belongs to ownerID.
func (s *SQLiteStore) GetTodo(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return getTodo(ctx, s.db, id, ownerID)
}

// ListTodos retrieves one page of ownerID's todos matching the filter,
// newest first, along with the total number of matches.
func (s *SQLiteStore) ListTodos(
	ctx context.Context,
	ownerID string,
	filter model.TodoFilter,
) ([]model.Todo, int, error) {
	where, args := buildTodoWhere(ownerID, filter)

	var (
		todos []model.Todo
		total int
	)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, "SELECT COUNT(*) FROM todos"+where, args...); err != nil {
			return fmt.Errorf("counting todos: %w", err)
		}
		if filter.Offset() >= total {
			return nil
		}

		query := "SELECT " + todoColumns + " FROM todos" + where +
			" ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
		pageArgs := append(append([]any{}, args...), filter.PerPage, filter.Offset())

		var err error
		todos, err = queryTodos(ctx, tx, query, pageArgs...)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// UpdateTodo applies the fields present in patch to ownerID's todo and
// reconciles status with is_completed. updated_at moves only when a stored
// value changed.
func (s *SQLiteStore) UpdateTodo(
	ctx context.Context,
	id, ownerID string,
	patch model.TodoPatch,
) (*model.Todo, error) {
	return s.mutateTodo(ctx, id, ownerID, patch.Apply)
}

// DeleteTodo removes ownerID's todo. It reports whether a row was removed.
func (s *SQLiteStore) DeleteTodo(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM todos WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return false, fmt.Errorf("deleting todo %s: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting todo %s: %w", id, err)
	}
	return rows > 0, nil
}

// MarkTodoCompleted sets is_completed and status=completed.
func (s *SQLiteStore) MarkTodoCompleted(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return s.mutateTodo(ctx, id, ownerID, func(t *model.Todo) bool {
		t.IsCompleted = true
		t.Status = model.TodoStatusCompleted
		return true
	})
}

// MarkTodoPending clears is_completed and sets status=pending.
func (s *SQLiteStore) MarkTodoPending(ctx context.Context, id, ownerID string) (*model.Todo, error) {
	return s.mutateTodo(ctx, id, ownerID, func(t *model.Todo) bool {
		t.IsCompleted = false
		t.Status = model.TodoStatusPending
		return true
	})
}

// OverdueTodos returns ownerID's incomplete todos due before now, soonest
// due first.
func (s *SQLiteStore) OverdueTodos(
	ctx context.Context,
	ownerID string,
	now time.Time,
) ([]model.Todo, error) {
	return queryTodos(ctx, s.db, `
		SELECT `+todoColumns+` FROM todos
		WHERE owner_id = ?
			AND due_date IS NOT NULL
			AND due_date < ?
			AND is_completed = 0
		ORDER BY due_date ASC`,
		ownerID, formatTime(now),
	)
}

// DueSoonTodos returns ownerID's incomplete todos due within [from, until],
// soonest first.
func (s *SQLiteStore) DueSoonTodos(
	ctx context.Context,
	ownerID string,
	from, until time.Time,
) ([]model.Todo, error) {
	return queryTodos(ctx, s.db, `
		SELECT `+todoColumns+` FROM todos
		WHERE owner_id = ?
			AND due_date IS NOT NULL
			AND due_date >= ?
			AND due_date <= ?
			AND is_completed = 0
		ORDER BY due_date ASC`,
		ownerID, formatTime(from), formatTime(until),
	)
}

// TodoStats aggregates ownerID's todos. Every priority and status key is
// present in the result even when its count is zero.
func (s *SQLiteStore) TodoStats(
	ctx context.Context,
	ownerID string,
	now time.Time,
) (model.TodoStats, error) {
	stats := model.NewTodoStats()

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var totals struct {
			Total     int `db:"total"`
			Completed int `db:"completed"`
			Pending   int `db:"pending"`
			Overdue   int `db:"overdue"`
		}
		err := tx.GetContext(ctx, &totals, `
			SELECT
				COUNT(*) AS total,
				COUNT(CASE WHEN is_completed = 1 THEN 1 END) AS completed,
				COUNT(CASE WHEN is_completed = 0 THEN 1 END) AS pending,
				COUNT(CASE WHEN is_completed = 0 AND due_date IS NOT NULL
					AND due_date < ? THEN 1 END) AS overdue
			FROM todos WHERE owner_id = ?`,
			formatTime(now), ownerID,
		)
		if err != nil {
			return fmt.Errorf("counting todo totals: %w", err)
		}
		stats.Total = totals.Total
		stats.Completed = totals.Completed
		stats.Pending = totals.Pending
		stats.Overdue = totals.Overdue

		byPriority, err := groupCounts(ctx, tx, "priority", ownerID)
		if err != nil {
			return err
		}
		for k, n := range byPriority {
			stats.ByPriority[model.TodoPriority(k)] = n
		}

		byStatus, err := groupCounts(ctx, tx, "status", ownerID)
		if err != nil {
			return err
		}
		for k, n := range byStatus {
			stats.ByStatus[model.TodoStatus(k)] = n
		}
		return nil
	})
	if err != nil {
		return model.TodoStats{}, err
	}

	return stats, nil
}

// groupCounts counts ownerID's todos per distinct value of column. Values
// with no rows are absent; the caller zero-fills.
func groupCounts(ctx context.Context, tx *sqlx.Tx, column, ownerID string) (map[string]int, error) {
	var rows []struct {
		Bucket string `db:"bucket"`
		Count  int    `db:"n"`
	}
	err := tx.SelectContext(ctx, &rows,
		"SELECT "+column+" AS bucket, COUNT(*) AS n FROM todos WHERE owner_id = ? GROUP BY "+column,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("counting todos by %s: %w", column, err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Bucket] = r.Count
	}
	return counts, nil
}

// mutateTodo loads ownerID's todo, lets fn modify it and writes it back in
// one transaction. fn reports whether anything changed; only then is the
// row rewritten and updated_at bumped.
func (s *SQLiteStore) mutateTodo(
	ctx context.Context,
	id, ownerID string,
	fn func(*model.Todo) bool,
) (*model.Todo, error) {
	var todo *model.Todo
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		todo, err = getTodo(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}
		if !fn(todo) {
			return nil
		}

		updatedAt := s.timestamp()
		todo.UpdatedAt = &updatedAt

		_, err = tx.ExecContext(ctx, `
			UPDATE todos SET
				title = ?, description = ?, status = ?, priority = ?,
				due_date = ?, is_completed = ?, updated_at = ?
			WHERE id = ? AND owner_id = ?`,
			todo.Title, todo.Description, string(todo.Status), string(todo.Priority),
			formatTimePtr(todo.DueDate), boolToInt(todo.IsCompleted), formatTime(updatedAt),
			id, ownerID,
		)
		if err != nil {
			return fmt.Errorf("updating todo %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// buildTodoWhere constructs the owner-scoped WHERE clause and args for a
// TodoFilter.
func buildTodoWhere(ownerID string, filter model.TodoFilter) (string, []any) {
	conditions := []string{"owner_id = ?"}
	args := []any{ownerID}

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, string(*filter.Priority))
	}
	if filter.IsCompleted != nil {
		conditions = append(conditions, "is_completed = ?")
		args = append(args, boolToInt(*filter.IsCompleted))
	}
	if filter.Search != nil && *filter.Search != "" {
		// instr is case-sensitive, unlike LIKE.
		conditions = append(conditions,
			"(instr(title, ?) > 0 OR instr(COALESCE(description, ''), ?) > 0)")
		args = append(args, *filter.Search, *filter.Search)
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, "due_date <= ?")
		args = append(args, formatTime(*filter.DueBefore))
	}
	if filter.DueAfter != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, formatTime(*filter.DueAfter))
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func getTodo(ctx context.Context, q sqlx.QueryerContext, id, ownerID string) (*model.Todo, error) {
	row := q.QueryRowxContext(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = ? AND owner_id = ?", id, ownerID)

	todo, err := scanTodo(row)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting todo %s: %w", id, err)
	}
	return &todo, nil
}

func queryTodos(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]model.Todo, error) {
	rows, err := q.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning todo row: %w", err)
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// scanTodo scans a todo row selected with todoColumns.
func scanTodo(row scanner) (model.Todo, error) {
	var (
		todo        model.Todo
		description sql.NullString
		status      string
		priority    string
		dueDate     sql.NullString
		isCompleted int
		createdAt   string
		updatedAt   sql.NullString
	)

	err := row.Scan(
		&todo.ID, &todo.OwnerID, &todo.Title, &description, &status, &priority,
		&dueDate, &isCompleted, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.Todo{}, err
	}

	todo.Description = nullStringPtr(description)
	todo.Status = model.TodoStatus(status)
	todo.Priority = model.TodoPriority(priority)
	todo.IsCompleted = isCompleted != 0
	if todo.DueDate, err = parseNullTime(dueDate); err != nil {
		return model.Todo{}, err
	}
	if todo.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Todo{}, err
	}
	if todo.UpdatedAt, err = parseNullTime(updatedAt); err != nil {
		return model.Todo{}, err
	}

	return todo, nil
}
