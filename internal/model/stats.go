package model

// TodoStats aggregates a user's todos. Pending counts every todo that is not
// completed, whatever its status value.
type TodoStats struct {
	Total      int                  `json:"total_todos"`
	Completed  int                  `json:"completed_todos"`
	Pending    int                  `json:"pending_todos"`
	Overdue    int                  `json:"overdue_todos"`
	ByPriority map[TodoPriority]int `json:"todos_by_priority"`
	ByStatus   map[TodoStatus]int   `json:"todos_by_status"`
}

// NewTodoStats returns stats with every priority and status key present.
func NewTodoStats() TodoStats {
	s := TodoStats{
		ByPriority: make(map[TodoPriority]int, len(TodoPriorities)),
		ByStatus:   make(map[TodoStatus]int, len(TodoStatuses)),
	}
	for _, p := range TodoPriorities {
		s.ByPriority[p] = 0
	}
	for _, st := range TodoStatuses {
		s.ByStatus[st] = 0
	}
	return s
}
