// Package service translates task and session operations into a concrete backend.
//
// Two variants satisfy TaskService with identical observable behavior: Live talks to the REST
// backend over HTTP, Mock keeps everything in memory for offline use. Callers hold the
// interface, so tests and the controller never need to know which one is active.
//
// Every failure is returned as *Error, classified by operation (see ErrAuth, ErrFetch,
// ErrCreate, ErrUpdate and ErrDelete). No variant retries.
package service

import (
	"context"

	"TaskClient/models"
	"TaskClient/session"
)

// Variant names, used as the metrics and log label.
const (
	VariantLive = "live"
	VariantMock = "mock"
)

// TaskService is the capability set the controller depends on.
type TaskService interface {
	// Login exchanges credentials for a session. Rejected credentials yield ErrAuth.
	Login(ctx context.Context, username, password string) (models.User, error)
	// Logout ends the session locally. It never touches the network.
	Logout()
	// ListTasks returns every task. Failures yield ErrFetch.
	ListTasks(ctx context.Context) ([]models.Task, error)
	// CreateTask stores a draft; the server assigns the id and the Pending status. Failures yield ErrCreate.
	CreateTask(ctx context.Context, draft models.Draft) (models.Task, error)
	// UpdateTask fully replaces the task's mutable fields and returns what the server stored.
	// Unknown ids and rejected requests yield ErrUpdate.
	UpdateTask(ctx context.Context, id models.TaskID, task models.Task) (models.Task, error)
	// DeleteTask removes a task. Failures yield ErrDelete carrying the server's message.
	DeleteTask(ctx context.Context, id models.TaskID) error
	// Session exposes the variant's session store.
	Session() *session.Store
	// Variant returns VariantLive or VariantMock.
	Variant() string
}

var (
	_ TaskService = (*Live)(nil)
	_ TaskService = (*Mock)(nil)
)
