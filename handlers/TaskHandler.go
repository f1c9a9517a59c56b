package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"TaskClient/models"
	"TaskClient/response"
	"TaskClient/store"
	"TaskClient/validation"
	"TaskClient/wire"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// maxRequestBody bounds decoded request bodies.
const maxRequestBody = 1 << 20

// sanitizeDraft trims the user-entered fields.
func sanitizeDraft(d *models.Draft) {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)
}

// fail counts the error, logs it and writes message as a plain text body with the given status.
func (s *Server) fail(res http.ResponseWriter, req *http.Request, errorCounter *prometheus.CounterVec, endpoint, operation string, status int, message string, err error) {
	errorCounter.WithLabelValues(endpoint).Inc()
	entry := s.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
		"status":         status,
	})
	if err != nil {
		entry.Error(err.Error())
	} else {
		entry.Error(message)
	}
	http.Error(res, message, status)
}

func writeJSON(res http.ResponseWriter, status int, v any) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	json.NewEncoder(res).Encode(v)
}

// LoginHandler handles the login request and issues a token for known accounts.
// It keeps track of the number of requests or errors using Prometheus counters.
// The request and response use the configured wire field names.
//
// Example request body (default field names):
//
//	{
//	  "nombreUsuario": "admin",
//	  "contrasena": "admin"
//	}
//
// Example response:
//
//	{
//	  "token": "eyJhbGciOi...",
//	  "nombreUsuario": "admin",
//	  "rol": "Admin"
//	}
//
// If the credentials are invalid, the response status is set to Unauthorized.
func (s *Server) LoginHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation = "login", "logging in user"
	endPointCounter.WithLabelValues(endpoint).Inc()

	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxRequestBody)).Decode(&body); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	username := wire.Lookup(body, s.cfg.Fields.Username)
	password := wire.Lookup(body, s.cfg.Fields.Password)

	account, ok := s.account(username, password)
	if !ok {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	token, err := s.CreateToken(account.Username, account.Role)
	if err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusInternalServerError, "error with creating token", err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
		"role":           account.Role,
	}).Info("user logged in")
	writeJSON(res, http.StatusOK, s.cfg.Fields.LoginResponse(token, account.Username, account.Role))
}

// GetTasksHandler handles the HTTP request for retrieving all tasks.
// It keeps track of the number of requests or errors using Prometheus counters.
//
// Example response:
//
//	[
//	  {"id": 1, "name": "Task 1", "description": "Description of Task 1", "status": 0},
//	  {"id": 2, "name": "Task 2", "description": "Description of Task 2", "status": 1}
//	]
func (s *Server) GetTasksHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation = "list", "Get all tasks"
	endPointCounter.WithLabelValues(endpoint).Inc()

	if _, err := s.authorize(req); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusUnauthorized, "unauthorized user", err)
		return
	}
	tasks, err := s.store.List(req.Context())
	if err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusInternalServerError, "Unsuccessful select operation", err)
		return
	}
	writeJSON(res, http.StatusOK, tasks)
}

// CreateTaskHandler handles the HTTP request for creating a new task.
// It keeps track of the number of requests or errors using Prometheus counters.
// The server assigns the id and the pending status; only the name is required.
//
// Example request body:
//
//	{
//	  "name": "Task 1",
//	  "description": "Description of Task 1"
//	}
//
// Example response (201 Created):
//
//	{
//	  "id": 1,
//	  "name": "Task 1",
//	  "description": "Description of Task 1",
//	  "status": 0
//	}
func (s *Server) CreateTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation = "create", "Create a task"
	endPointCounter.WithLabelValues(endpoint).Inc()

	if _, err := s.authorize(req); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusUnauthorized, "unauthorized user", err)
		return
	}
	draft := models.Draft{}
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxRequestBody)).Decode(&draft); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	sanitizeDraft(&draft)
	if err := validation.Struct(draft); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusBadRequest, err.Error(), nil)
		return
	}
	task, err := s.store.Create(req.Context(), draft)
	if err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusInternalServerError, "Unsuccessful insert operation", err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
		"task id":        task.ID.String(),
	}).Info("Processing request")
	writeJSON(res, http.StatusCreated, task)
}

// UpdateTaskHandler handles the HTTP request for replacing a task.
// It keeps track of the number of requests or errors using Prometheus counters.
// The id in the path wins over any id in the body; name, description and status are replaced.
//
// Example request body (PUT {resource}/1):
//
//	{
//	  "id": 1,
//	  "name": "Task 1 updated",
//	  "description": "Description of Task 1 updated",
//	  "status": 1
//	}
//
// The response echoes the stored task. An unknown id yields 404 "task not found".
func (s *Server) UpdateTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation = "update", "Update a task"
	endPointCounter.WithLabelValues(endpoint).Inc()

	if _, err := s.authorize(req); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusUnauthorized, "unauthorized user", err)
		return
	}
	id := models.ParseID(req.PathValue("id"))
	task := models.Task{}
	if err := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxRequestBody)).Decode(&task); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	task.ID = id
	task.Name = strings.TrimSpace(task.Name)
	task.Description = strings.TrimSpace(task.Description)
	if err := validation.Struct(task); err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusBadRequest, err.Error(), nil)
		return
	}
	updated, err := s.store.Update(req.Context(), id, task)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusNotFound, store.ErrNotFound.Error(), nil)
		return
	}
	if err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusInternalServerError, "Unsuccessful update operation", err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
	}).Info("Processing request")
	writeJSON(res, http.StatusOK, updated)
}

// DeleteTaskHandler handles the HTTP request for deleting a task.
// It keeps track of the number of requests or errors using Prometheus counters.
// When DeleteRequiresAdmin is set, only users with the "Admin" role can delete a task.
//
// Returns:
//
//	{
//	  "message": "Successfully deleted task with id=1"
//	}
func (s *Server) DeleteTaskHandler(res http.ResponseWriter, req *http.Request, endPointCounter *prometheus.CounterVec, errorCounter *prometheus.CounterVec) {
	const endpoint, operation = "delete", "Delete a task"
	endPointCounter.WithLabelValues(endpoint).Inc()

	claims, err := s.authorize(req)
	if err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusUnauthorized, "unauthorized user", err)
		return
	}
	if s.cfg.DeleteRequiresAdmin && !strings.EqualFold(claims.Role, AdminRole) {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusForbidden, "only admins can delete tasks", nil)
		return
	}
	id := models.ParseID(req.PathValue("id"))
	err = s.store.Delete(req.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusNotFound, store.ErrNotFound.Error(), nil)
		return
	}
	if err != nil {
		s.fail(res, req, errorCounter, endpoint, operation, http.StatusInternalServerError, "Unsuccessful delete operation", err)
		return
	}

	s.log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
		"user":           claims.Username,
	}).Info("Processing request")
	writeJSON(res, http.StatusOK, response.Response{
		Message: fmt.Sprintf("Successfully deleted task with id=%s", id),
	})
}
