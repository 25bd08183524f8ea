package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nhle/todo-service/internal/apperr"
	"github.com/nhle/todo-service/internal/model"
	"github.com/nhle/todo-service/internal/todo"
)

func (h *handler) createTodo(c *gin.Context) {
	var in model.NewTodo
	if err := c.ShouldBindJSON(&in); err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	t, err := h.todos.Create(c.Request.Context(), currentUser(c).ID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *handler) listTodos(c *gin.Context) {
	filter, err := parseTodoFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.todos.List(c.Request.Context(), currentUser(c).ID, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) todoStats(c *gin.Context) {
	stats, err := h.todos.Stats(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) overdueTodos(c *gin.Context) {
	todos, err := h.todos.Overdue(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *handler) dueSoonTodos(c *gin.Context) {
	hours, err := intQuery(c, "hours", todo.DefaultDueSoonHours)
	if err != nil {
		h.fail(c, err)
		return
	}

	todos, err := h.todos.DueSoon(c.Request.Context(), currentUser(c).ID, hours)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *handler) getTodo(c *gin.Context) {
	id, ok := h.todoID(c)
	if !ok {
		return
	}
	t, err := h.todos.Get(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) updateTodo(c *gin.Context) {
	id, ok := h.todoID(c)
	if !ok {
		return
	}
	var patch model.TodoPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.fail(c, invalidBody(err))
		return
	}

	t, err := h.todos.Update(c.Request.Context(), id, currentUser(c).ID, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) deleteTodo(c *gin.Context) {
	id, ok := h.todoID(c)
	if !ok {
		return
	}
	if err := h.todos.Delete(c.Request.Context(), id, currentUser(c).ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) completeTodo(c *gin.Context) {
	id, ok := h.todoID(c)
	if !ok {
		return
	}
	t, err := h.todos.Complete(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *handler) reopenTodo(c *gin.Context) {
	id, ok := h.todoID(c)
	if !ok {
		return
	}
	t, err := h.todos.Reopen(c.Request.Context(), id, currentUser(c).ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// todoID validates the :id path parameter and writes the error response
// when it is not a UUID.
func (h *handler) todoID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.fail(c, apperr.Validation("todo id must be a UUID"))
		return "", false
	}
	return id.String(), true
}

func parseTodoFilter(c *gin.Context) (model.TodoFilter, error) {
	var (
		f   model.TodoFilter
		err error
	)

	if v, ok := c.GetQuery("status"); ok {
		s := model.TodoStatus(v)
		f.Status = &s
	}
	if v, ok := c.GetQuery("priority"); ok {
		p := model.TodoPriority(v)
		f.Priority = &p
	}
	if v, ok := c.GetQuery("is_completed"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperr.Validation("is_completed must be a boolean")
		}
		f.IsCompleted = &b
	}
	if v, ok := c.GetQuery("search"); ok && v != "" {
		f.Search = &v
	}
	if f.DueBefore, err = timeQuery(c, "due_before"); err != nil {
		return f, err
	}
	if f.DueAfter, err = timeQuery(c, "due_after"); err != nil {
		return f, err
	}
	if f.Page, err = intQuery(c, "page", model.DefaultPage); err != nil {
		return f, err
	}
	if f.PerPage, err = intQuery(c, "per_page", model.DefaultPerPage); err != nil {
		return f, err
	}
	return f, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation(name + " must be an integer")
	}
	return n, nil
}

func timeQuery(c *gin.Context, name string) (*time.Time, error) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return nil, nil
	}
	t, err := model.ParseTimestamp(v)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeValidation, "Invalid "+name+" date format. Use ISO format.", err)
	}
	return &t, nil
}
