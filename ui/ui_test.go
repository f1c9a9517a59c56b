package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"TaskClient/controller"
	"TaskClient/logging"
	"TaskClient/models"
	"TaskClient/service"
	"TaskClient/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShell(input string) (*Shell, *controller.Controller, *bytes.Buffer) {
	log := logging.Discard()
	live := service.NewMock(service.WithMockLogger(log))
	mock := service.NewMock(service.WithMockLogger(log))
	ctrl := controller.New(live, controller.WithMock(mock), controller.WithLogger(log))
	out := &bytes.Buffer{}
	return NewShell(ctrl, strings.NewReader(input), out, WithLogger(log)), ctrl, out
}

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme(" Color ")
	require.NoError(t, err)
	assert.Equal(t, ThemeColor, theme)

	_, err = ParseTheme("neon")
	assert.EqualError(t, err, `unknown theme "neon" (want plain or color)`)
}

func TestRendererLoginScreen(t *testing.T) {
	out := &bytes.Buffer{}
	NewRenderer(out, ThemePlain).Render(controller.Snapshot{
		LoginForm:  controller.LoginForm{Username: "linda"},
		LoginError: "invalid credentials",
		UsingMock:  true,
	})

	assert.Equal(t, "== Login == [mock]\n"+
		"user: linda\n"+
		"login failed: invalid credentials\n"+
		"type: login <user> <password>\n", out.String())
}

func TestRendererTaskList(t *testing.T) {
	tasks := []models.Task{
		{ID: models.ID("1"), Name: "Revisar correo", Description: "Responder", Status: models.Pending},
		{ID: models.ID("2"), Name: "Preparar informe", Status: models.Done},
	}
	out := &bytes.Buffer{}
	NewRenderer(out, ThemePlain).Render(controller.Snapshot{
		State:     controller.LoggedIn,
		User:      &models.User{Username: "linda", Role: "Admin"},
		Tasks:     tasks,
		Stats:     controller.ComputeStats(tasks),
		ShowForm:  true,
		EditingID: models.ID("2"),
		Draft:     models.Draft{Name: "Preparar informe"},
		Notice:    "Error deleting task: forbidden",
	})

	assert.Equal(t, "== Tasks of linda (Admin) == [live]\n"+
		"total 2 | pending 1 | done 1\n"+
		"  1. [ ] Revisar correo - Responder\n"+
		"  2. [x] Preparar informe\n"+
		"-- editing task 2: \"Preparar informe\"\n"+
		"! Error deleting task: forbidden\n", out.String())
}

func TestRendererColorTheme(t *testing.T) {
	out := &bytes.Buffer{}
	NewRenderer(out, ThemeColor).Render(controller.Snapshot{
		State: controller.LoggedIn,
		Tasks: []models.Task{{ID: models.ID("1"), Name: "Hecha", Status: models.Done}},
	})
	assert.Contains(t, out.String(), ansiGreen+"[x]"+ansiReset)
	assert.Contains(t, out.String(), ansiBold+"== Tasks =="+ansiReset)
}

func TestShellSession(t *testing.T) {
	shell, ctrl, out := newTestShell(strings.Join([]string{
		"mock on",
		"login admin admin",
		"add Comprar pan | integral",
		"toggle 4",
		"delete 1",
		"logout",
		"quit",
		"refresh",
	}, "\n"))

	require.NoError(t, shell.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "== Login == [mock]")
	assert.Contains(t, text, "== Tasks of admin (Admin) == [mock]")
	assert.Contains(t, text, "total 3 | pending 2 | done 1")
	assert.Contains(t, text, "total 4 | pending 3 | done 1")
	assert.Contains(t, text, "4. [ ] Comprar pan - integral")
	assert.Contains(t, text, "4. [x] Comprar pan - integral")
	assert.Contains(t, text, "total 3 | pending 1 | done 2")
	assert.NotContains(t, text, "error:")

	snap := ctrl.Snapshot()
	assert.Equal(t, controller.LoggedOut, snap.State)
	assert.Nil(t, snap.Tasks)
}

func TestShellPrintsUsageErrors(t *testing.T) {
	shell, _, out := newTestShell("")
	ctx := context.Background()

	assert.False(t, shell.Execute(ctx, "toggle 1"))
	assert.False(t, shell.Execute(ctx, "launch"))
	assert.False(t, shell.Execute(ctx, "login admin admin"))
	assert.False(t, shell.Execute(ctx, "delete 7"))
	assert.False(t, shell.Execute(ctx, "mock on"))
	assert.True(t, shell.Execute(ctx, "quit"))

	text := out.String()
	assert.Contains(t, text, "error: not logged in")
	assert.Contains(t, text, `error: unknown command "launch", type help for a list`)
	assert.Contains(t, text, "error: no task number 7")
	assert.Contains(t, text, "error: log out before switching services")
}

func TestShellLoginFailureIsRenderedOnce(t *testing.T) {
	shell, ctrl, out := newTestShell("")

	shell.Execute(context.Background(), "login admin nope")

	assert.Equal(t, controller.LoggedOut, ctrl.Snapshot().State)
	assert.Equal(t, 1, strings.Count(out.String(), "invalid credentials"))
	assert.NotContains(t, out.String(), "error:")
}

func TestShellNoticeIsDismissedAfterRender(t *testing.T) {
	log := logging.Discard()
	st := store.NewMemory(models.Task{ID: models.ID("1"), Name: "Revisar correo"})
	ctrl := controller.New(service.NewMock(service.WithStore(st), service.WithMockLogger(log)), controller.WithLogger(log))
	out := &bytes.Buffer{}
	shell := NewShell(ctrl, strings.NewReader(""), out, WithLogger(log))
	ctx := context.Background()

	shell.Execute(ctx, "login admin admin")
	require.NoError(t, st.Delete(ctx, models.ID("1")))
	shell.Execute(ctx, "toggle 1")

	assert.Equal(t, 1, strings.Count(out.String(), "! Error updating status: task not found"))
	assert.NotContains(t, out.String(), "error:")
	assert.Empty(t, ctrl.Snapshot().Notice)
}

func TestShellHelp(t *testing.T) {
	shell, _, out := newTestShell("")
	shell.Execute(context.Background(), "help")
	assert.Contains(t, out.String(), "toggle <n>")
}
