package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"TaskClient/metrics"
	"TaskClient/models"
	"TaskClient/session"
	"TaskClient/wire"

	"github.com/sirupsen/logrus"
)

// maxBodySize bounds how much of a response is read, error bodies included.
const maxBodySize = 1 << 20

var (
	errNoToken = errors.New("login response has no token")
	errNoTask  = errors.New("response has no task")
)

// Live is the HTTP-backed TaskService. Each call issues exactly one request.
type Live struct {
	endpoints wire.Endpoints
	fields    wire.FieldNames
	client    *http.Client
	session   *session.Store
	log       *logrus.Logger
}

// LiveOption configures a Live service.
type LiveOption func(*Live)

// WithHTTPClient replaces the default client. No timeout is set by default; the transport's
// behavior applies.
func WithHTTPClient(c *http.Client) LiveOption {
	return func(l *Live) { l.client = c }
}

// WithLogger sets the logger used for request logging.
func WithLogger(log *logrus.Logger) LiveOption {
	return func(l *Live) { l.log = log }
}

// WithSession shares an existing session store.
func WithSession(s *session.Store) LiveOption {
	return func(l *Live) { l.session = s }
}

// NewLive returns a Live service for the given endpoints and login field names.
func NewLive(endpoints wire.Endpoints, fields wire.FieldNames, opts ...LiveOption) *Live {
	l := &Live{
		endpoints: endpoints,
		fields:    fields,
		client:    http.DefaultClient,
		session:   session.New(),
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Live) Session() *session.Store { return l.session }

func (l *Live) Variant() string { return VariantLive }

// Login posts the credentials under the wire's field names and starts a session with the returned token.
// The username and role fall back to the entered username and DefaultRole when the response omits them.
//
// Returns:
// - models.User: The logged-in user.
// - error: ErrAuth when the server answers with a non-success status or without a token.
func (l *Live) Login(ctx context.Context, username, password string) (user models.User, err error) {
	defer func() { l.observe(OpLogin, http.MethodPost, l.endpoints.LoginURL(), err) }()

	var body map[string]any
	status, err := l.do(ctx, OpLogin, http.MethodPost, l.endpoints.LoginURL(), l.fields.LoginRequest(username, password), &body)
	if err != nil {
		return models.User{}, err
	}

	token := wire.Lookup(body, l.fields.Token)
	if token == "" {
		return models.User{}, newError(OpLogin, status, "", errNoToken)
	}
	user = models.User{
		Username: wire.Lookup(body, l.fields.Username),
		Role:     wire.Lookup(body, l.fields.Role),
	}
	if user.Username == "" {
		user.Username = username
	}
	if user.Role == "" {
		user.Role = models.DefaultRole
	}
	if err := l.session.Begin(token, user); err != nil {
		return models.User{}, newError(OpLogin, status, "", err)
	}
	return user, nil
}

// Logout clears the session. The backend is not contacted.
func (l *Live) Logout() {
	l.session.Clear()
}

func (l *Live) ListTasks(ctx context.Context) (tasks []models.Task, err error) {
	url := l.endpoints.TasksURL()
	defer func() { l.observe(OpList, http.MethodGet, url, err) }()

	if _, err = l.do(ctx, OpList, http.MethodGet, url, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (l *Live) CreateTask(ctx context.Context, draft models.Draft) (task models.Task, err error) {
	url := l.endpoints.TasksURL()
	defer func() { l.observe(OpCreate, http.MethodPost, url, err) }()

	return l.doTask(ctx, OpCreate, http.MethodPost, url, draft)
}

func (l *Live) UpdateTask(ctx context.Context, id models.TaskID, task models.Task) (updated models.Task, err error) {
	url := l.endpoints.TaskURL(id.String())
	defer func() { l.observe(OpUpdate, http.MethodPut, url, err) }()

	task.ID = id
	return l.doTask(ctx, OpUpdate, http.MethodPut, url, task)
}

func (l *Live) DeleteTask(ctx context.Context, id models.TaskID) (err error) {
	url := l.endpoints.TaskURL(id.String())
	defer func() { l.observe(OpDelete, http.MethodDelete, url, err) }()

	_, err = l.do(ctx, OpDelete, http.MethodDelete, url, nil, nil)
	return err
}

// doTask sends in and decodes the task the server answers with. A success status whose body is
// empty or carries no id is reported as a failure of op.
func (l *Live) doTask(ctx context.Context, op Op, method, url string, in any) (models.Task, error) {
	var task models.Task
	status, err := l.do(ctx, op, method, url, in, &task)
	if err != nil {
		return models.Task{}, err
	}
	if task.ID.IsZero() {
		return models.Task{}, newError(op, status, "", errNoTask)
	}
	return task, nil
}

// do sends one JSON request and decodes the response into out (when out is not nil).
// Any transport failure or non-success status is returned as the typed error of op.
//
// Returns:
// - int: The HTTP status, 0 when no response arrived.
// - error: *Error classified by op.
func (l *Live) do(ctx context.Context, op Op, method, url string, in, out any) (int, error) {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, newError(op, 0, "", fmt.Errorf("encode request: %w", err))
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, newError(op, 0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := l.session.Token(); ok {
		req.Header.Set("Authorization", token)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return 0, newError(op, 0, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, newError(op, resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, newError(op, resp.StatusCode, string(data), nil)
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, newError(op, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
		}
	}
	return resp.StatusCode, nil
}

func (l *Live) observe(op Op, method, url string, err error) {
	metrics.ObserveClient(VariantLive, string(op), err)
	entry := l.log.WithFields(logrus.Fields{
		"task operation": string(op),
		"request":        method + " " + url,
		"variant":        VariantLive,
	})
	if err != nil {
		var opErr *Error
		if errors.As(err, &opErr) {
			entry = entry.WithField("status", opErr.StatusCode)
		}
		entry.Error(err.Error())
		return
	}
	entry.Debug("request completed")
}
