// TaskClient is a terminal client for a task-management REST backend.
//
// It logs a user in, lists their tasks with a small summary (total, pending, done) and lets them
// create, edit, toggle and delete tasks. The backend may be a real deployment reached over HTTP or
// an in-memory mock for offline use. The same binary also runs a reference backend speaking the
// wire protocol the client expects.
//
// The following commands are available:
//
//  1. shell - Interactive session (default)
//  2. list - Log in once, print the task list and exit
//  3. serve - Run the reference backend (JWT login, tasks CRUD, rate limiting, /metrics)
//
// Settings come from the environment and an optional .env file; see package config.
// You may use godoc -http=:6060 to view the documentation in your browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TaskClient/config"
	"TaskClient/controller"
	"TaskClient/handlers"
	"TaskClient/logging"
	"TaskClient/models"
	"TaskClient/service"
	"TaskClient/store"
	"TaskClient/ui"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "taskclient",
		Usage: "manage tasks on a REST backend",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Usage: "API base URL (overrides API_BASE_URL)"},
			&cli.BoolFlag{Name: "mock", Usage: "use the in-memory service instead of the backend"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides LOG_LEVEL)"},
			&cli.StringFlag{Name: "theme", Usage: "plain or color (overrides UI_THEME)"},
		},
		Action: runShell,
		Commands: []*cli.Command{
			{
				Name:   "shell",
				Usage:  "start an interactive session",
				Action: runShell,
			},
			{
				Name:  "list",
				Usage: "log in, print the task list and exit",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Required: true, EnvVars: []string{"TASKCLIENT_PASSWORD"}},
				},
				Action: runList,
			},
			{
				Name:   "serve",
				Usage:  "run the reference backend",
				Action: runServe,
			},
		},
	}
}

// setup loads the configuration, applies the global flags and builds the logger.
func setup(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("base-url") {
		cfg.APIBaseURL = c.String("base-url")
	}
	if c.IsSet("mock") {
		cfg.UseMockService = c.Bool("mock")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("theme") {
		cfg.Theme = c.String("theme")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(cfg.LogLevel, cfg.LogFormat), nil
}

// newController wires both service variants behind one controller.
func newController(cfg *config.Config, log *logrus.Logger) (*controller.Controller, error) {
	live := service.NewLive(cfg.Endpoints(), cfg.FieldNames(), service.WithLogger(log))
	mock := service.NewMock(service.WithMockLogger(log))
	ctrl := controller.New(live, controller.WithMock(mock), controller.WithLogger(log))
	if err := ctrl.UseMock(cfg.UseMockService); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func runShell(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	theme, err := ui.ParseTheme(cfg.Theme)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, log)
	if err != nil {
		return err
	}
	shell := ui.NewShell(ctrl, os.Stdin, os.Stdout, ui.WithTheme(theme), ui.WithLogger(log))
	err = shell.Run(c.Context)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runList(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	theme, err := ui.ParseTheme(cfg.Theme)
	if err != nil {
		return err
	}
	ctrl, err := newController(cfg, log)
	if err != nil {
		return err
	}

	ctrl.SetLoginForm(c.String("username"), c.String("password"))
	if err := ctrl.Login(c.Context); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	defer ctrl.Logout()

	snap := ctrl.Snapshot()
	ui.NewRenderer(os.Stdout, theme).Render(snap)
	if snap.Notice != "" {
		return errors.New(snap.Notice)
	}
	return nil
}

func runServe(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBackend(); err != nil {
		return err
	}

	var st store.TaskStore
	switch cfg.StoreDriver {
	case config.StoreMySQL:
		db, err := store.OpenMySQL(c.Context, cfg.MySQL())
		if err != nil {
			return err
		}
		defer db.Close()
		st = db
		log.WithField("address", cfg.DBAddress).Info("Successfully connected to database")
	default:
		st = store.NewMemory(store.SampleTasks()...)
	}

	backend := handlers.New(handlers.Config{
		Endpoints: cfg.Endpoints(),
		Fields:    cfg.FieldNames(),
		SecretKey: []byte(cfg.SecretKey),
		TokenTTL:  cfg.TokenTTL,
		Accounts: []handlers.Account{
			{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: handlers.AdminRole},
			{Username: cfg.UserUsername, Password: cfg.UserPassword, Role: models.DefaultRole},
		},
		DeleteRequiresAdmin: cfg.DeleteRequiresAdmin,
		RateLimit:           rate.Limit(cfg.RateLimit),
		RateBurst:           cfg.RateBurst,
	}, st, handlers.WithLogger(log))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           backend.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening on port " + cfg.Port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-c.Context.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("Shutting down server")
	return server.Shutdown(shutdownCtx)
}
