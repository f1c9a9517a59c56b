package service

import (
	"context"
	"errors"
	"net/http"

	"TaskClient/metrics"
	"TaskClient/models"
	"TaskClient/session"
	"TaskClient/store"
	"TaskClient/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MockAccount is a credential accepted by the mock service.
type MockAccount struct {
	Password string
	Role     string
}

// DefaultMockAccounts returns the accounts the mock accepts out of the box.
func DefaultMockAccounts() map[string]MockAccount {
	return map[string]MockAccount{
		"admin": {Password: "admin", Role: "Admin"},
		"user":  {Password: "user", Role: models.DefaultRole},
	}
}

// Mock is the in-memory TaskService. It answers the way the backend does, status codes included,
// so the controller cannot tell the variants apart.
type Mock struct {
	store    store.TaskStore
	accounts map[string]MockAccount
	session  *session.Store
	log      *logrus.Logger
}

// MockOption configures a Mock service.
type MockOption func(*Mock)

// WithStore replaces the seeded sample store.
func WithStore(s store.TaskStore) MockOption {
	return func(m *Mock) { m.store = s }
}

// WithAccounts replaces the accepted credentials.
func WithAccounts(accounts map[string]MockAccount) MockOption {
	return func(m *Mock) { m.accounts = accounts }
}

// WithMockLogger sets the logger.
func WithMockLogger(log *logrus.Logger) MockOption {
	return func(m *Mock) { m.log = log }
}

// NewMock returns a mock seeded with store.SampleTasks.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		store:    store.NewMemory(store.SampleTasks()...),
		accounts: DefaultMockAccounts(),
		session:  session.New(),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mock) Session() *session.Store { return m.session }

func (m *Mock) Variant() string { return VariantMock }

func (m *Mock) Login(_ context.Context, username, password string) (user models.User, err error) {
	defer func() { m.observe(OpLogin, err) }()

	account, ok := m.accounts[username]
	if !ok || username == "" || account.Password != password {
		return models.User{}, newError(OpLogin, http.StatusUnauthorized, "", nil)
	}
	role := account.Role
	if role == "" {
		role = models.DefaultRole
	}
	user = models.User{Username: username, Role: role}
	if err := m.session.Begin("mock-"+uuid.NewString(), user); err != nil {
		return models.User{}, newError(OpLogin, http.StatusUnauthorized, "", err)
	}
	return user, nil
}

func (m *Mock) Logout() {
	m.session.Clear()
}

func (m *Mock) ListTasks(ctx context.Context) (tasks []models.Task, err error) {
	defer func() { m.observe(OpList, err) }()

	if err := m.authorize(OpList); err != nil {
		return nil, err
	}
	tasks, err = m.store.List(ctx)
	if err != nil {
		return nil, newError(OpList, http.StatusInternalServerError, "", err)
	}
	return tasks, nil
}

func (m *Mock) CreateTask(ctx context.Context, draft models.Draft) (task models.Task, err error) {
	defer func() { m.observe(OpCreate, err) }()

	if err := m.authorize(OpCreate); err != nil {
		return models.Task{}, err
	}
	if err := validation.Struct(draft); err != nil {
		return models.Task{}, newError(OpCreate, http.StatusBadRequest, err.Error(), nil)
	}
	task, err = m.store.Create(ctx, draft)
	if err != nil {
		return models.Task{}, newError(OpCreate, http.StatusInternalServerError, "", err)
	}
	return task, nil
}

func (m *Mock) UpdateTask(ctx context.Context, id models.TaskID, task models.Task) (updated models.Task, err error) {
	defer func() { m.observe(OpUpdate, err) }()

	if err := m.authorize(OpUpdate); err != nil {
		return models.Task{}, err
	}
	task.ID = id
	if err := validation.Struct(task); err != nil {
		return models.Task{}, newError(OpUpdate, http.StatusBadRequest, err.Error(), nil)
	}
	updated, err = m.store.Update(ctx, id, task)
	if err != nil {
		return models.Task{}, storeError(OpUpdate, err)
	}
	return updated, nil
}

func (m *Mock) DeleteTask(ctx context.Context, id models.TaskID) (err error) {
	defer func() { m.observe(OpDelete, err) }()

	if err := m.authorize(OpDelete); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return storeError(OpDelete, err)
	}
	return nil
}

func (m *Mock) authorize(op Op) error {
	if !m.session.LoggedIn() {
		return newError(op, http.StatusUnauthorized, "unauthorized user", nil)
	}
	return nil
}

func storeError(op Op, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return newError(op, http.StatusNotFound, store.ErrNotFound.Error(), err)
	}
	return newError(op, http.StatusInternalServerError, "", err)
}

func (m *Mock) observe(op Op, err error) {
	metrics.ObserveClient(VariantMock, string(op), err)
	entry := m.log.WithFields(logrus.Fields{
		"task operation": string(op),
		"variant":        VariantMock,
	})
	if err != nil {
		entry.Error(err.Error())
		return
	}
	entry.Debug("request completed")
}
