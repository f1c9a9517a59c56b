// Package store keeps tasks for the mock adapter and for the reference backend.
package store

import (
	"context"
	"errors"

	"TaskClient/models"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// TaskStore is the persistence contract shared by the in-memory and MySQL stores.
type TaskStore interface {
	// List returns every task in insertion order.
	List(ctx context.Context) ([]models.Task, error)
	// Create assigns an id and the Pending status to draft and stores it.
	Create(ctx context.Context, draft models.Draft) (models.Task, error)
	// Update replaces the mutable fields of the task with the given id and returns the stored result.
	Update(ctx context.Context, id models.TaskID, task models.Task) (models.Task, error)
	// Delete removes the task with the given id.
	Delete(ctx context.Context, id models.TaskID) error
}
