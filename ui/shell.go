package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"TaskClient/commands"
	"TaskClient/controller"
	"TaskClient/models"

	"github.com/sirupsen/logrus"
)

const prompt = "> "

// Shell reads commands line by line and drives a controller.
// The task list is re-rendered after every command that changed the controller state.
type Shell struct {
	ctrl     *controller.Controller
	in       io.Reader
	out      io.Writer
	renderer *Renderer
	log      *logrus.Logger
	dirty    atomic.Bool
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithTheme sets the renderer theme.
func WithTheme(theme Theme) ShellOption {
	return func(s *Shell) { s.renderer = NewRenderer(s.out, theme) }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) ShellOption {
	return func(s *Shell) { s.log = log }
}

// NewShell returns a shell reading from in and printing to out.
func NewShell(ctrl *controller.Controller, in io.Reader, out io.Writer, opts ...ShellOption) *Shell {
	s := &Shell{
		ctrl:     ctrl,
		in:       in,
		out:      out,
		renderer: NewRenderer(out, ThemePlain),
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	ctrl.OnChange(func(controller.Snapshot) { s.dirty.Store(true) })
	return s
}

// Run renders the initial screen and executes commands until quit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(s.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- scanner.Err()
	}()

	s.render()
	for {
		io.WriteString(s.out, prompt)
		select {
		case <-ctx.Done():
			io.WriteString(s.out, "\n")
			return ctx.Err()
		case err := <-done:
			io.WriteString(s.out, "\n")
			return err
		case line := <-lines:
			if quit := s.Execute(ctx, line); quit {
				return nil
			}
		}
	}
}

// Execute runs one command line. It reports whether the shell should stop.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	cmd, err := commands.Parse(line)
	if errors.Is(err, commands.ErrEmpty) {
		return false
	}
	if err != nil {
		s.printError(err)
		return false
	}
	s.log.WithFields(logrus.Fields{
		"task operation": "shell command",
		"request":        cmd.Verb(),
	}).Debug("executing command")

	if _, ok := cmd.(commands.QuitCommand); ok {
		return true
	}
	if err := s.dispatch(ctx, cmd); err != nil && s.report(err) {
		s.printError(err)
	}
	if s.dirty.Load() {
		s.render()
	}
	return false
}

func (s *Shell) dispatch(ctx context.Context, cmd commands.Command) error {
	switch c := cmd.(type) {
	case commands.LoginCommand:
		s.ctrl.SetLoginForm(c.Username, c.Password)
		return s.ctrl.Login(ctx)
	case commands.MockCommand:
		return s.ctrl.UseMock(c.Enabled())
	case commands.RefreshCommand:
		return s.ctrl.LoadTasks(ctx)
	case commands.AddTaskCommand:
		s.ctrl.CancelForm()
		s.ctrl.NewTask()
		s.ctrl.SetDraft(c.Name, c.Description)
		return s.ctrl.SubmitTask(ctx)
	case commands.EditTaskCommand:
		task, err := s.task(c.Row)
		if err != nil {
			return err
		}
		if err := s.ctrl.EditTask(task); err != nil {
			return err
		}
		s.ctrl.SetDraft(c.Name, c.Description)
		return s.ctrl.SubmitTask(ctx)
	case commands.ToggleTaskCommand:
		task, err := s.task(c.Row)
		if err != nil {
			return err
		}
		return s.ctrl.ToggleStatus(ctx, task)
	case commands.DeleteTaskCommand:
		task, err := s.task(c.Row)
		if err != nil {
			return err
		}
		return s.ctrl.DeleteTask(ctx, task.ID)
	case commands.LogoutCommand:
		s.ctrl.Logout()
	case commands.HelpCommand:
		io.WriteString(s.out, strings.Join(commands.Usage, "\n")+"\n")
	}
	return nil
}

// task resolves a 1-based row of the current list.
func (s *Shell) task(row int) (models.Task, error) {
	snap := s.ctrl.Snapshot()
	if snap.State != controller.LoggedIn {
		return models.Task{}, controller.ErrNotLoggedIn
	}
	if row < 1 || row > len(snap.Tasks) {
		return models.Task{}, fmt.Errorf("no task number %d", row)
	}
	return snap.Tasks[row-1], nil
}

// report tells whether err still needs printing. Failures the controller already surfaced as a
// notice or a login error are shown by the next render instead.
func (s *Shell) report(err error) bool {
	snap := s.ctrl.Snapshot()
	msg := err.Error()
	return !strings.Contains(snap.Notice, msg) && !strings.Contains(snap.LoginError, msg)
}

func (s *Shell) printError(err error) {
	io.WriteString(s.out, s.renderer.paint(ansiRed, "error: "+err.Error())+"\n")
}

// render prints the current snapshot. A notice is shown once and then dismissed.
func (s *Shell) render() {
	snap := s.ctrl.Snapshot()
	s.renderer.Render(snap)
	if snap.Notice != "" {
		s.ctrl.DismissNotice()
	}
	s.dirty.Store(false)
}
