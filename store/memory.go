package store

import (
	"context"
	"strings"
	"sync"

	"TaskClient/models"

	"github.com/google/uuid"
)

// Memory is an in-memory TaskStore. It is safe for concurrent use.
type Memory struct {
	mu    sync.Mutex
	tasks []models.Task
	newID func() models.TaskID
}

// NewMemory returns a store holding a copy of seed. Seeded tasks without an id get one.
func NewMemory(seed ...models.Task) *Memory {
	m := &Memory{
		newID: func() models.TaskID { return models.ID(uuid.NewString()) },
	}
	for _, t := range seed {
		if t.ID.IsZero() {
			t.ID = m.newID()
		}
		m.tasks = append(m.tasks, t)
	}
	return m
}

// SampleTasks is the data the mock service starts with.
func SampleTasks() []models.Task {
	return []models.Task{
		{Name: "Revisar correo", Description: "Responder los mensajes pendientes", Status: models.Pending},
		{Name: "Preparar informe", Description: "Informe semanal del equipo", Status: models.Done},
		{Name: "Llamar al cliente", Description: "Confirmar la reunión del jueves", Status: models.Pending},
	}
}

func (m *Memory) List(_ context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *Memory) Create(_ context.Context, draft models.Draft) (models.Task, error) {
	task := models.Task{
		ID:          m.newID(),
		Name:        strings.TrimSpace(draft.Name),
		Description: strings.TrimSpace(draft.Description),
		Status:      models.Pending,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return task, nil
}

func (m *Memory) Update(_ context.Context, id models.TaskID, task models.Task) (models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := models.FindTask(m.tasks, id)
	if i < 0 {
		return models.Task{}, ErrNotFound
	}
	updated := models.Task{
		ID:          m.tasks[i].ID,
		Name:        strings.TrimSpace(task.Name),
		Description: strings.TrimSpace(task.Description),
		Status:      task.Status,
	}
	m.tasks[i] = updated
	return updated, nil
}

func (m *Memory) Delete(_ context.Context, id models.TaskID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := models.FindTask(m.tasks, id)
	if i < 0 {
		return ErrNotFound
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}
