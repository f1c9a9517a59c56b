package controller

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"TaskClient/logging"
	"TaskClient/models"
	"TaskClient/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seed = []models.Task{
	{ID: models.ID("1"), Name: "Write report", Description: "weekly", Status: models.Pending},
	{ID: models.ID("2"), Name: "Call client", Description: "", Status: models.Done},
}

func newTestController(svc *fakeService, opts ...Option) *Controller {
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(svc, opts...)
}

func loggedIn(t *testing.T, svc *fakeService) *Controller {
	t.Helper()
	svc.listFn = func(context.Context) ([]models.Task, error) {
		out := make([]models.Task, len(seed))
		copy(out, seed)
		return out, nil
	}
	c := newTestController(svc)
	c.SetLoginForm("linda", "123456")
	require.NoError(t, c.Login(context.Background()))
	return c
}

func TestLoginSuccessFetchesTasksOnce(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	snap := c.Snapshot()
	assert.Equal(t, LoggedIn, snap.State)
	require.NotNil(t, snap.User)
	assert.Equal(t, "linda", snap.User.Username)
	assert.Equal(t, seed, snap.Tasks)
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, svc.Calls("list"))

	// Rendering never fetches.
	for i := 0; i < 5; i++ {
		_ = c.Snapshot()
	}
	assert.Equal(t, 1, svc.Calls("list"))
}

func TestLoginTwiceIsRejected(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	err := c.Login(context.Background())

	assert.ErrorIs(t, err, ErrAlreadyLoggedIn)
	assert.Equal(t, 1, svc.Calls("login"))
	assert.Equal(t, 1, svc.Calls("list"))
}

func TestLoginFailureKeepsFormAndState(t *testing.T) {
	svc := newFakeService()
	svc.loginFn = func(context.Context, string, string) (models.User, error) {
		return models.User{}, errUnauthorized
	}
	c := newTestController(svc)
	c.SetLoginForm("linda", "wrong")

	err := c.Login(context.Background())

	assert.ErrorIs(t, err, service.ErrAuth)
	snap := c.Snapshot()
	assert.Equal(t, LoggedOut, snap.State)
	assert.Nil(t, snap.User)
	assert.Equal(t, "Credenciales incorrectas", snap.LoginError)
	assert.Equal(t, LoginForm{Username: "linda", Password: "wrong"}, snap.LoginForm)
	assert.False(t, snap.Loading)
	assert.Equal(t, 0, svc.Calls("list"))
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc := newFakeService()
	c := newTestController(svc)
	c.SetLoginForm(" ", "")

	err := c.Login(context.Background())

	assert.EqualError(t, err, "username is required")
	assert.Equal(t, "username is required", c.Snapshot().LoginError)
	assert.Equal(t, 0, svc.Calls("login"))
}

func TestLoginClearsPreviousError(t *testing.T) {
	svc := newFakeService()
	fail := true
	svc.loginFn = func(_ context.Context, u, _ string) (models.User, error) {
		if fail {
			return models.User{}, errUnauthorized
		}
		return models.User{Username: u, Role: "Admin"}, nil
	}
	c := newTestController(svc)
	c.SetLoginForm("linda", "123456")
	require.Error(t, c.Login(context.Background()))

	fail = false
	require.NoError(t, c.Login(context.Background()))
	assert.Empty(t, c.Snapshot().LoginError)
}

func TestLoginSucceedsWhenRefreshFails(t *testing.T) {
	svc := newFakeService()
	svc.listFn = func(context.Context) ([]models.Task, error) {
		return nil, rejected(service.OpList, http.StatusInternalServerError, "failed to fetch tasks")
	}
	c := newTestController(svc)
	c.SetLoginForm("linda", "123456")

	require.NoError(t, c.Login(context.Background()))

	snap := c.Snapshot()
	assert.Equal(t, LoggedIn, snap.State)
	assert.Equal(t, "Error loading tasks: failed to fetch tasks", snap.Notice)
	assert.False(t, snap.Loading)
}

func TestLoadingRaisedDuringRoundTrip(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	var during bool
	svc.deleteFn = func(context.Context, models.TaskID) error {
		during = c.Snapshot().Loading
		return rejected(service.OpDelete, http.StatusInternalServerError, "boom")
	}

	require.Error(t, c.DeleteTask(context.Background(), models.ID("1")))
	assert.True(t, during)
	assert.False(t, c.Snapshot().Loading)
}

func TestToggleStatus(t *testing.T) {
	cases := []struct {
		name string
		task models.Task
		want models.Status
	}{
		{"pending becomes done", seed[0], models.Done},
		{"done becomes pending", seed[1], models.Pending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newFakeService()
			c := loggedIn(t, svc)
			svc.updateFn = func(_ context.Context, id models.TaskID, task models.Task) (models.Task, error) {
				task.ID = id
				task.Description = "server says hi"
				return task, nil
			}

			require.NoError(t, c.ToggleStatus(context.Background(), tc.task))

			sent := svc.lastUpdate()
			assert.Equal(t, tc.want, sent.Status)
			assert.Equal(t, tc.task.Name, sent.Name)

			tasks := c.Snapshot().Tasks
			require.Len(t, tasks, 2)
			i := models.FindTask(tasks, tc.task.ID)
			require.GreaterOrEqual(t, i, 0)
			assert.Equal(t, tc.want, tasks[i].Status)
			assert.Equal(t, "server says hi", tasks[i].Description)
		})
	}
}

func TestToggleStatusFailureKeepsStatus(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)
	svc.updateFn = func(context.Context, models.TaskID, models.Task) (models.Task, error) {
		return models.Task{}, rejected(service.OpUpdate, http.StatusNotFound, "task not found")
	}

	err := c.ToggleStatus(context.Background(), seed[0])

	assert.ErrorIs(t, err, service.ErrUpdate)
	snap := c.Snapshot()
	assert.Equal(t, seed, snap.Tasks)
	assert.Equal(t, "Error updating status: task not found", snap.Notice)
	assert.False(t, snap.Loading)
}

func TestDeleteSuccessRemovesTask(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	require.NoError(t, c.DeleteTask(context.Background(), models.ID("1")))

	assert.Equal(t, []models.Task{seed[1]}, c.Snapshot().Tasks)
}

func TestDeleteFailureKeepsTaskAndSurfacesMessage(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)
	svc.deleteFn = func(context.Context, models.TaskID) error {
		return rejected(service.OpDelete, http.StatusForbidden, "only admins can delete tasks")
	}

	err := c.DeleteTask(context.Background(), models.ID("1"))

	assert.ErrorIs(t, err, service.ErrDelete)
	assert.Equal(t, "only admins can delete tasks", err.Error())
	snap := c.Snapshot()
	assert.Equal(t, seed, snap.Tasks)
	assert.Equal(t, "Error deleting task: only admins can delete tasks", snap.Notice)
	assert.False(t, snap.Loading)
}

func TestSubmitCreatesTask(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)
	svc.createFn = func(_ context.Context, d models.Draft) (models.Task, error) {
		return models.Task{ID: models.ID("3"), Name: d.Name, Description: d.Description, Status: models.Pending}, nil
	}

	c.NewTask()
	assert.True(t, c.Snapshot().ShowForm)
	c.SetDraft("A", "B")
	require.NoError(t, c.SubmitTask(context.Background()))

	snap := c.Snapshot()
	require.Len(t, snap.Tasks, 3)
	assert.Equal(t, models.Task{ID: models.ID("3"), Name: "A", Description: "B"}, snap.Tasks[2])
	assert.False(t, snap.ShowForm)
	assert.Equal(t, models.Draft{}, snap.Draft)
	assert.False(t, snap.Editing())
}

func TestSubmitEditUpdatesWithCachedStatus(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	require.NoError(t, c.EditTask(seed[1]))
	snap := c.Snapshot()
	assert.Equal(t, models.Draft{Name: "Call client", Description: ""}, snap.Draft)
	assert.Equal(t, models.ID("2"), snap.EditingID)
	assert.True(t, snap.ShowForm)

	c.SetDraft("Call client back", "tomorrow")
	require.NoError(t, c.SubmitTask(context.Background()))

	sent := svc.lastUpdate()
	assert.Equal(t, models.Task{ID: models.ID("2"), Name: "Call client back", Description: "tomorrow", Status: models.Done}, sent)
	assert.Equal(t, 0, svc.Calls("create"))

	snap = c.Snapshot()
	assert.Equal(t, sent, snap.Tasks[1])
	assert.False(t, snap.ShowForm)
	assert.False(t, snap.Editing())
	assert.Equal(t, models.Draft{}, snap.Draft)
}

func TestSubmitFailureLeavesFormOpen(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)
	svc.createFn = func(context.Context, models.Draft) (models.Task, error) {
		return models.Task{}, rejected(service.OpCreate, http.StatusBadRequest, "name is required")
	}

	c.NewTask()
	c.SetDraft("A", "B")
	err := c.SubmitTask(context.Background())

	assert.ErrorIs(t, err, service.ErrCreate)
	snap := c.Snapshot()
	assert.True(t, snap.ShowForm)
	assert.Equal(t, models.Draft{Name: "A", Description: "B"}, snap.Draft)
	assert.Equal(t, seed, snap.Tasks)
	assert.False(t, snap.Loading)
	assert.Equal(t, "Error creating task: name is required", snap.Notice)
}

func TestSubmitRequiresName(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	c.NewTask()
	c.SetDraft("", "only a description")
	err := c.SubmitTask(context.Background())

	assert.EqualError(t, err, "name is required")
	assert.Equal(t, 0, svc.Calls("create"))
	assert.True(t, c.Snapshot().ShowForm)
}

func TestNewTaskTogglesForm(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)
	require.NoError(t, c.EditTask(seed[0]))

	c.NewTask()
	snap := c.Snapshot()
	assert.False(t, snap.ShowForm)
	assert.False(t, snap.Editing())

	c.NewTask()
	assert.True(t, c.Snapshot().ShowForm)

	c.CancelForm()
	assert.False(t, c.Snapshot().ShowForm)
}

func TestLogoutClearsEverything(t *testing.T) {
	t.Run("logged in", func(t *testing.T) {
		svc := newFakeService()
		c := loggedIn(t, svc)
		c.NewTask()
		c.SetDraft("A", "B")

		c.Logout()

		snap := c.Snapshot()
		assert.Equal(t, LoggedOut, snap.State)
		assert.Nil(t, snap.User)
		assert.Empty(t, snap.Tasks)
		assert.Equal(t, LoginForm{}, snap.LoginForm)
		assert.False(t, snap.ShowForm)
		assert.Equal(t, models.Draft{}, snap.Draft)
		assert.False(t, svc.Session().LoggedIn())
	})

	t.Run("logged out", func(t *testing.T) {
		svc := newFakeService()
		c := newTestController(svc)
		c.SetLoginForm("linda", "typed")

		c.Logout()

		snap := c.Snapshot()
		assert.Equal(t, LoggedOut, snap.State)
		assert.Equal(t, LoginForm{}, snap.LoginForm)
	})
}

func TestOperationsRequireSession(t *testing.T) {
	svc := newFakeService()
	c := newTestController(svc)
	ctx := context.Background()

	assert.ErrorIs(t, c.LoadTasks(ctx), ErrNotLoggedIn)
	assert.ErrorIs(t, c.SubmitTask(ctx), ErrNotLoggedIn)
	assert.ErrorIs(t, c.DeleteTask(ctx, models.ID("1")), ErrNotLoggedIn)
	assert.ErrorIs(t, c.ToggleStatus(ctx, seed[0]), ErrNotLoggedIn)
	assert.ErrorIs(t, c.EditTask(seed[0]), ErrNotLoggedIn)
	assert.Equal(t, 0, svc.Calls("list")+svc.Calls("create")+svc.Calls("update")+svc.Calls("delete"))
}

func TestUseMockSwitchesVariant(t *testing.T) {
	live := newFakeService()
	mock := newFakeService()
	mock.variant = service.VariantMock
	c := newTestController(live, WithMock(mock))

	require.NoError(t, c.UseMock(true))
	assert.True(t, c.Snapshot().UsingMock)
	c.SetLoginForm("admin", "admin")
	require.NoError(t, c.Login(context.Background()))

	assert.Equal(t, 1, mock.Calls("login"))
	assert.Equal(t, 1, mock.Calls("list"))
	assert.Equal(t, 0, live.Calls("login"))
	assert.ErrorIs(t, c.UseMock(false), ErrSwitchWhileLoggedIn)

	c.Logout()
	assert.Equal(t, 1, mock.Calls("logout"))
	require.NoError(t, c.UseMock(false))
	assert.False(t, c.Snapshot().UsingMock)
}

func TestUseMockWithoutMock(t *testing.T) {
	c := newTestController(newFakeService())
	assert.ErrorIs(t, c.UseMock(true), ErrNoMock)
	assert.NoError(t, c.UseMock(false))
}

func TestOnChangeReceivesSnapshots(t *testing.T) {
	svc := newFakeService()
	c := newTestController(svc)

	var (
		mu    sync.Mutex
		seen  []Snapshot
		loads int
	)
	c.OnChange(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
		if s.Loading {
			loads++
		}
	})
	c.SetLoginForm("linda", "123456")
	require.NoError(t, c.Login(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, LoggedIn, seen[len(seen)-1].State)
	assert.False(t, seen[len(seen)-1].Loading)
	assert.Positive(t, loads)
}

func TestLastResponseWins(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	first := make(chan struct{})
	release := make(chan struct{})
	svc.updateFn = func(_ context.Context, id models.TaskID, task models.Task) (models.Task, error) {
		task.ID = id
		if task.Name == "slow" {
			close(first)
			<-release
		}
		return task, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.ToggleStatus(context.Background(), models.Task{ID: models.ID("1"), Name: "slow"})
	}()
	<-first
	require.NoError(t, c.ToggleStatus(context.Background(), models.Task{ID: models.ID("1"), Name: "fast"}))
	close(release)
	wg.Wait()

	tasks := c.Snapshot().Tasks
	assert.Equal(t, "slow", tasks[models.FindTask(tasks, models.ID("1"))].Name)
}

func TestSubmitEditKeepsStatusOfTaskGoneFromList(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	require.NoError(t, c.EditTask(seed[1]))
	svc.listFn = func(context.Context) ([]models.Task, error) {
		return []models.Task{seed[0]}, nil
	}
	require.NoError(t, c.LoadTasks(context.Background()))
	require.Equal(t, -1, models.FindTask(c.Snapshot().Tasks, seed[1].ID))

	c.SetDraft("Call client back", "")
	require.NoError(t, c.SubmitTask(context.Background()))

	assert.Equal(t, models.Done, svc.lastUpdate().Status)
	assert.Equal(t, 0, svc.Calls("create"))
}

func TestEditStatusIsDroppedWithTheForm(t *testing.T) {
	svc := newFakeService()
	c := loggedIn(t, svc)

	require.NoError(t, c.EditTask(seed[1]))
	c.CancelForm()
	c.NewTask()
	c.SetDraft("Fresh", "")
	require.NoError(t, c.SubmitTask(context.Background()))

	assert.Equal(t, 1, svc.Calls("create"))
	assert.Equal(t, 0, svc.Calls("update"))
}

func TestLogoutDuringLoginWins(t *testing.T) {
	svc := newFakeService()
	started := make(chan struct{})
	release := make(chan struct{})
	svc.loginFn = func(_ context.Context, username, _ string) (models.User, error) {
		close(started)
		<-release
		return models.User{Username: username, Role: models.DefaultRole}, nil
	}
	c := newTestController(svc)
	c.SetLoginForm("linda", "123456")

	errc := make(chan error, 1)
	go func() { errc <- c.Login(context.Background()) }()
	<-started
	c.Logout()
	close(release)

	assert.ErrorIs(t, <-errc, ErrLoggedOutDuringLogin)
	snap := c.Snapshot()
	assert.Equal(t, LoggedOut, snap.State)
	assert.Nil(t, snap.User)
	assert.False(t, snap.Loading)
	assert.False(t, svc.Session().LoggedIn())
	assert.Equal(t, 0, svc.Calls("list"))
	assert.Equal(t, 2, svc.Calls("logout"))

	svc.loginFn = nil
	c.SetLoginForm("linda", "123456")
	require.NoError(t, c.Login(context.Background()))
	assert.Equal(t, LoggedIn, c.Snapshot().State)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{Total: 2, Pending: 1, Done: 1}, ComputeStats(seed))
	assert.Equal(t, Stats{}, ComputeStats(nil))
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrNotLoggedIn, ErrAlreadyLoggedIn))
	assert.False(t, errors.Is(ErrLoggedOutDuringLogin, ErrNotLoggedIn))
}
