// Package controller holds the application state behind the task screens and turns user events
// into service calls.
//
// The controller is a small state machine: LoggedOut -> (successful login) -> LoggedIn -> (logout)
// -> LoggedOut, with an orthogonal Loading flag that is raised for the duration of every round trip
// and always lowered again, failures included. Entering LoggedIn refreshes the task list exactly
// once; rendering never triggers a fetch.
//
// The task collection only ever changes to what the server returned: there are no optimistic
// updates, so a failed delete leaves the task visible and a toggled status only flips once the
// server confirms it.
//
// Handlers may run on different goroutines. State is guarded by a mutex that is never held across
// a service call, so overlapping operations (two rapid edits, say) race and the last response to
// land wins. There is no ordering token on the wire to do better; this is accepted behavior.
// In-flight requests are not cancelled by later actions.
//
// The one exception is a Logout that lands while a Login is still in flight. The logout wins:
// when the login response arrives the controller stays LoggedOut, drops the token the service
// just stored and reports ErrLoggedOutDuringLogin.
package controller

import (
	"context"
	"errors"
	"sync"

	"TaskClient/models"
	"TaskClient/service"
	"TaskClient/validation"

	"github.com/sirupsen/logrus"
)

// State is the session state of the application.
type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged in"
	}
	return "logged out"
}

var (
	// ErrAlreadyLoggedIn is returned by Login while a session is active.
	ErrAlreadyLoggedIn = errors.New("already logged in")
	// ErrNotLoggedIn is returned by task operations without a session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrNoMock is returned by UseMock(true) when no mock service was configured.
	ErrNoMock = errors.New("mock service is not configured")
	// ErrSwitchWhileLoggedIn is returned by UseMock during a session.
	ErrSwitchWhileLoggedIn = errors.New("log out before switching services")
	// ErrLoggedOutDuringLogin is returned by Login when Logout ran before the login response arrived.
	ErrLoggedOutDuringLogin = errors.New("logged out while logging in")
)

// LoginForm holds the values typed on the login screen.
type LoginForm struct {
	Username string
	Password string
}

// Controller orchestrates user events, the active TaskService and the cached task collection.
type Controller struct {
	live service.TaskService
	mock service.TaskService
	log  *logrus.Logger

	mu         sync.Mutex
	useMock    bool
	state      State
	user       *models.User
	tasks      []models.Task
	loading    bool
	loginForm  LoginForm
	loginError string
	showForm   bool
	notice     string
	listeners  []func(Snapshot)

	// Form state. editingStatus is the status the edited task had when EditTask was called.
	draft         models.Draft
	editingID     models.TaskID
	editingStatus models.Status

	// epoch counts logouts so an in-flight login can tell it was overtaken.
	epoch uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithMock makes the mock variant available to UseMock.
func WithMock(mock service.TaskService) Option {
	return func(c *Controller) { c.mock = mock }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New returns a logged-out controller that uses live until UseMock switches variants.
func New(live service.TaskService, opts ...Option) *Controller {
	c := &Controller{
		live: live,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnChange registers a listener called with a fresh snapshot after every state change.
// Listeners run on the goroutine that made the change, outside the controller lock.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// UseMock selects the mock (true) or live (false) variant. Only allowed while logged out.
func (c *Controller) UseMock(on bool) error {
	var err error
	c.update(func() {
		switch {
		case c.state == LoggedIn:
			err = ErrSwitchWhileLoggedIn
		case on && c.mock == nil:
			err = ErrNoMock
		default:
			c.useMock = on
		}
	})
	return err
}

// SetLoginForm stores the login screen values.
func (c *Controller) SetLoginForm(username, password string) {
	c.update(func() {
		c.loginForm = LoginForm{Username: username, Password: password}
	})
}

// Login authenticates with the login form values. On failure the state stays LoggedOut, the form
// keeps its values and LoginError explains why. On success the task list is refreshed once.
//
// Returns:
// - error: ErrAlreadyLoggedIn, a presence check failure, the service's AuthError, or
//   ErrLoggedOutDuringLogin when Logout ran before the response arrived.
func (c *Controller) Login(ctx context.Context) error {
	entered, err := c.login(ctx)
	if err != nil {
		return err
	}
	if entered {
		// A failed refresh is surfaced as a notice; the login itself succeeded.
		_ = c.LoadTasks(ctx)
	}
	return nil
}

func (c *Controller) login(ctx context.Context) (bool, error) {
	var (
		svc   service.TaskService
		creds models.Credentials
		epoch uint64
		err   error
	)
	c.update(func() {
		if c.state == LoggedIn {
			err = ErrAlreadyLoggedIn
			return
		}
		svc = c.activeLocked()
		epoch = c.epoch
		creds = models.Credentials{Username: c.loginForm.Username, Password: c.loginForm.Password}
		c.loginError = ""
	})
	if err != nil {
		return false, err
	}
	if err := validation.Struct(creds); err != nil {
		c.update(func() { c.loginError = err.Error() })
		return false, err
	}

	c.startLoading()
	defer c.stopLoading()

	user, err := svc.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"task operation": "logging in user",
			"variant":        svc.Variant(),
		}).Error(err.Error())
		c.update(func() { c.loginError = err.Error() })
		return false, err
	}

	entered, overtaken := false, false
	c.update(func() {
		switch {
		case c.epoch != epoch:
			overtaken = true
		case c.state == LoggedOut:
			c.state = LoggedIn
			c.user = &user
			entered = true
		}
	})
	if overtaken {
		svc.Logout()
		c.log.WithFields(logrus.Fields{
			"task operation": "logging in user",
			"variant":        svc.Variant(),
		}).Warn(ErrLoggedOutDuringLogin.Error())
		return false, ErrLoggedOutDuringLogin
	}
	c.log.WithFields(logrus.Fields{
		"task operation": "logging in user",
		"variant":        svc.Variant(),
		"role":           user.Role,
	}).Info("user logged in")
	return entered, nil
}

// Logout ends the session from any state and clears the user, the tasks, the login form and
// the task form.
func (c *Controller) Logout() {
	var svc service.TaskService
	c.update(func() {
		svc = c.activeLocked()
		c.epoch++
		c.state = LoggedOut
		c.user = nil
		c.tasks = nil
		c.loginForm = LoginForm{}
		c.loginError = ""
		c.notice = ""
		c.resetFormLocked()
	})
	if svc != nil {
		svc.Logout()
	}
}

// LoadTasks replaces the collection with the server's list.
// On failure the collection is left untouched and a notice is set.
func (c *Controller) LoadTasks(ctx context.Context) error {
	svc, err := c.sessionService()
	if err != nil {
		return err
	}
	c.startLoading()
	defer c.stopLoading()

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		c.fail("Error loading tasks", "list", err)
		return err
	}
	c.update(func() {
		// A logout that happened while the request was in flight wins.
		if c.state == LoggedIn {
			c.tasks = tasks
		}
	})
	return nil
}

// NewTask toggles the task form and resets it to create mode.
func (c *Controller) NewTask() {
	c.update(func() {
		show := !c.showForm
		c.resetFormLocked()
		c.showForm = show
	})
}

// EditTask copies the task's mutable fields into the draft and switches the form to edit mode.
func (c *Controller) EditTask(task models.Task) error {
	var err error
	c.update(func() {
		if c.state != LoggedIn {
			err = ErrNotLoggedIn
			return
		}
		c.draft = task.Draft()
		c.editingID = task.ID
		c.editingStatus = task.Status
		c.showForm = true
	})
	return err
}

// SetDraft stores the task form values.
func (c *Controller) SetDraft(name, description string) {
	c.update(func() {
		c.draft = models.Draft{Name: name, Description: description}
	})
}

// CancelForm hides the task form and drops the draft.
func (c *Controller) CancelForm() {
	c.update(c.resetFormLocked)
}

// SubmitTask creates the draft, or updates the task being edited. On success the server's task
// is stored, the draft is cleared and the form hidden. On failure the form stays as it was.
//
// An edit keeps the task's status: the cached one if the task is still listed, otherwise the
// status it had when EditTask was called.
func (c *Controller) SubmitTask(ctx context.Context) error {
	var (
		svc     service.TaskService
		draft   models.Draft
		editing models.TaskID
		status  models.Status
		err     error
	)
	c.update(func() {
		if c.state != LoggedIn {
			err = ErrNotLoggedIn
			return
		}
		svc = c.activeLocked()
		draft = c.draft
		editing = c.editingID
		status = c.editingStatus
		if i := models.FindTask(c.tasks, editing); !editing.IsZero() && i >= 0 {
			status = c.tasks[i].Status
		}
	})
	if err != nil {
		return err
	}
	if err := validation.Struct(draft); err != nil {
		c.update(func() { c.notice = err.Error() })
		return err
	}

	c.startLoading()
	defer c.stopLoading()

	if !editing.IsZero() {
		task := models.Task{ID: editing, Name: draft.Name, Description: draft.Description, Status: status}
		updated, err := svc.UpdateTask(ctx, editing, task)
		if err != nil {
			c.fail("Error updating task", "update", err)
			return err
		}
		c.update(func() {
			c.replaceLocked(editing, updated)
			c.resetFormLocked()
		})
		return nil
	}

	created, err := svc.CreateTask(ctx, draft)
	if err != nil {
		c.fail("Error creating task", "create", err)
		return err
	}
	c.update(func() {
		if c.state == LoggedIn {
			c.tasks = append(c.tasks, created)
		}
		c.resetFormLocked()
	})
	return nil
}

// DeleteTask removes the task once the server confirms. A failure keeps the task in the
// collection and surfaces the server's message as a notice.
func (c *Controller) DeleteTask(ctx context.Context, id models.TaskID) error {
	svc, err := c.sessionService()
	if err != nil {
		return err
	}
	c.startLoading()
	defer c.stopLoading()

	if err := svc.DeleteTask(ctx, id); err != nil {
		c.fail("Error deleting task", "delete", err)
		return err
	}
	c.update(func() {
		if i := models.FindTask(c.tasks, id); i >= 0 {
			c.tasks = append(c.tasks[:i:i], c.tasks[i+1:]...)
		}
		if c.editingID.Same(id) {
			c.resetFormLocked()
		}
	})
	return nil
}

// ToggleStatus sends the task with its status flipped (Pending <-> Done) and stores the server's
// answer. The displayed status does not change before that.
func (c *Controller) ToggleStatus(ctx context.Context, task models.Task) error {
	svc, err := c.sessionService()
	if err != nil {
		return err
	}
	c.startLoading()
	defer c.stopLoading()

	next := task
	next.Status = task.Status.Toggle()
	updated, err := svc.UpdateTask(ctx, task.ID, next)
	if err != nil {
		c.fail("Error updating status", "toggle status", err)
		return err
	}
	c.update(func() { c.replaceLocked(task.ID, updated) })
	return nil
}

// DismissNotice clears the current notice.
func (c *Controller) DismissNotice() {
	c.update(func() { c.notice = "" })
}

// Snapshot returns a copy of the state the presentation layer renders from.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:      c.state,
		Loading:    c.loading,
		LoginForm:  c.loginForm,
		LoginError: c.loginError,
		Draft:      c.draft,
		EditingID:  c.editingID,
		ShowForm:   c.showForm,
		Notice:     c.notice,
		UsingMock:  c.useMock,
		MockReady:  c.mock != nil,
	}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	if c.tasks != nil {
		s.Tasks = make([]models.Task, len(c.tasks))
		copy(s.Tasks, c.tasks)
	}
	s.Stats = ComputeStats(s.Tasks)
	return s
}

// update applies fn under the lock and notifies listeners afterwards.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	snap := c.snapshotLocked()
	listeners := make([]func(Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l(snap)
	}
}

func (c *Controller) startLoading() {
	c.update(func() { c.loading = true })
}

func (c *Controller) stopLoading() {
	c.update(func() { c.loading = false })
}

// fail surfaces a failed operation to the user and the log.
func (c *Controller) fail(prefix, operation string, err error) {
	entry := c.log.WithFields(logrus.Fields{"task operation": operation})
	var opErr *service.Error
	if errors.As(err, &opErr) {
		entry = entry.WithField("status", opErr.StatusCode)
	}
	entry.Error(err.Error())
	c.update(func() { c.notice = prefix + ": " + err.Error() })
}

func (c *Controller) sessionService() (service.TaskService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != LoggedIn {
		return nil, ErrNotLoggedIn
	}
	return c.activeLocked(), nil
}

func (c *Controller) activeLocked() service.TaskService {
	if c.useMock && c.mock != nil {
		return c.mock
	}
	return c.live
}

func (c *Controller) replaceLocked(id models.TaskID, task models.Task) {
	if i := models.FindTask(c.tasks, id); i >= 0 {
		c.tasks[i] = task
	}
}

func (c *Controller) resetFormLocked() {
	c.draft = models.Draft{}
	c.editingID = models.TaskID{}
	c.editingStatus = models.Pending
	c.showForm = false
}
