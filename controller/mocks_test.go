package controller

import (
	"context"
	"net/http"
	"sync"

	"TaskClient/models"
	"TaskClient/service"
	"TaskClient/session"
)

// fakeService is a TaskService whose behavior is set per test. Unset functions succeed.
type fakeService struct {
	variant string
	sess    *session.Store

	loginFn  func(ctx context.Context, username, password string) (models.User, error)
	listFn   func(ctx context.Context) ([]models.Task, error)
	createFn func(ctx context.Context, draft models.Draft) (models.Task, error)
	updateFn func(ctx context.Context, id models.TaskID, task models.Task) (models.Task, error)
	deleteFn func(ctx context.Context, id models.TaskID) error

	mu      sync.Mutex
	calls   map[string]int
	updates []models.Task
}

func newFakeService() *fakeService {
	return &fakeService{variant: service.VariantLive, sess: session.New(), calls: map[string]int{}}
}

func (f *fakeService) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeService) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeService) Login(ctx context.Context, username, password string) (models.User, error) {
	f.count("login")
	user := models.User{Username: username, Role: models.DefaultRole}
	if f.loginFn != nil {
		var err error
		if user, err = f.loginFn(ctx, username, password); err != nil {
			return models.User{}, err
		}
	}
	_ = f.sess.Begin("tok", user)
	return user, nil
}

func (f *fakeService) Logout() {
	f.count("logout")
	f.sess.Clear()
}

func (f *fakeService) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.count("list")
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []models.Task{}, nil
}

func (f *fakeService) CreateTask(ctx context.Context, draft models.Draft) (models.Task, error) {
	f.count("create")
	if f.createFn != nil {
		return f.createFn(ctx, draft)
	}
	return models.Task{ID: models.ID("new"), Name: draft.Name, Description: draft.Description}, nil
}

func (f *fakeService) UpdateTask(ctx context.Context, id models.TaskID, task models.Task) (models.Task, error) {
	f.count("update")
	f.mu.Lock()
	f.updates = append(f.updates, task)
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(ctx, id, task)
	}
	task.ID = id
	return task, nil
}

func (f *fakeService) DeleteTask(ctx context.Context, id models.TaskID) error {
	f.count("delete")
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeService) Session() *session.Store { return f.sess }

func (f *fakeService) Variant() string { return f.variant }

func (f *fakeService) lastUpdate() models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

// rejected builds the typed error a backend answering with status and body produces.
func rejected(op service.Op, status int, body string) error {
	return &service.Error{Op: op, StatusCode: status, Message: body}
}

var errUnauthorized = rejected(service.OpLogin, http.StatusUnauthorized, "Credenciales incorrectas")
