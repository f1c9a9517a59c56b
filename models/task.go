// Package models contains the data models shared by the adapters, the controller and the reference backend.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the completion state of a task. The wire encodes it as an integer.
type Status int

const (
	// Pending is the default status assigned by the server on create.
	Pending Status = 0
	// Done marks a completed task.
	Done Status = 1
)

// Toggle returns the logical complement of s (Pending <-> Done).
func (s Status) Toggle() Status {
	if s == Done {
		return Pending
	}
	return Done
}

func (s Status) String() string {
	if s == Done {
		return "done"
	}
	return "pending"
}

// TaskID is the opaque identifier the server assigns to a task.
// Backends disagree on whether ids are numbers or strings. An id decoded from JSON remembers which
// kind it was and is encoded back the same way, so "007" stays a string and 7 stays a number.
type TaskID struct {
	value   string
	numeric bool
}

// ID returns a string id.
func ID(s string) TaskID { return TaskID{value: s} }

// NumericID returns an id that encodes as a JSON number.
func NumericID(n int64) TaskID {
	return TaskID{value: strconv.FormatInt(n, 10), numeric: true}
}

// ParseID reads an id from text such as a URL path segment. Only canonical integers
// become numeric ids; "007", "+5" and anything else stay strings.
func ParseID(s string) TaskID {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
		return NumericID(n)
	}
	return ID(s)
}

func (id TaskID) String() string { return id.value }

// IsZero reports whether no id has been assigned.
func (id TaskID) IsZero() bool { return id.value == "" }

// Numeric reports whether id encodes as a JSON number.
func (id TaskID) Numeric() bool { return id.numeric }

// Same reports whether id and other name the same task. The JSON kind is ignored.
func (id TaskID) Same(other TaskID) bool { return id.value == other.value }

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (id *TaskID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = TaskID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("task id must be a number or a string: %w", err)
	}
	*id = TaskID{value: n.String(), numeric: true}
	return nil
}

// MarshalJSON writes the id in the kind it was received or constructed with.
func (id TaskID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// Task represents a task owned by the backend. The client only holds a transient copy.
// Task has the following properties:
// - ID: The identifier assigned by the server.
// - Name: The name of the task.
// - Description: The description of the task.
// - Status: Pending (0) or Done (1).
type Task struct {
	ID          TaskID `json:"id"`
	Name        string `json:"name" validate:"required,fieldValidator"`
	Description string `json:"description"`
	Status      Status `json:"status" validate:"statusValidator"`
}

// Draft holds user-entered task fields that have not been persisted yet.
type Draft struct {
	Name        string `json:"name" validate:"required,fieldValidator"`
	Description string `json:"description"`
}

// Draft returns the mutable fields of t.
func (t Task) Draft() Draft {
	return Draft{Name: t.Name, Description: t.Description}
}

// FindTask returns the index of the task with the given id, or -1.
func FindTask(tasks []Task, id TaskID) int {
	for i, t := range tasks {
		if t.ID.Same(id) {
			return i
		}
	}
	return -1
}
