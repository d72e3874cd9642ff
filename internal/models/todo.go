package models

import "time"

// Todo represents a todo item. CreatedAt and UpdatedAt are Unix seconds.
type Todo struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	Description *string `db:"description" json:"description"`
	Completed   bool    `db:"completed" json:"completed"`
	Priority    int     `db:"priority" json:"priority"`
	CreatedAt   int64   `db:"created_at" json:"createdAt"`
	UpdatedAt   int64   `db:"updated_at" json:"updatedAt"`
}

// Tag is a named label attachable to any number of todos.
type Tag struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// TodoTag is one row of the todo/tag association.
type TodoTag struct {
	TodoID int64 `db:"todo_id" json:"todoId"`
	TagID  int64 `db:"tag_id" json:"tagId"`
}

// Command actions accepted on the remote inbox.
const (
	ActionCreate     = "create"
	ActionComplete   = "complete"
	ActionUncomplete = "uncomplete"
	ActionDelete     = "delete"
)

// TodoCommand is the message payload for Kafka (create/complete/uncomplete/delete).
type TodoCommand struct {
	EventID     string    `json:"event_id"`
	Action      string    `json:"action"`
	ID          int64     `json:"id,omitempty"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Priority    int       `json:"priority,omitempty"`
	Tag         string    `json:"tag,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Snapshot is the full state published by a sync round.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Todos       []Todo    `json:"todos"`
	Tags        []Tag     `json:"tags"`
	Stats       Stats     `json:"stats"`
}
