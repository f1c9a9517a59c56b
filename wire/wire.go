// Package wire describes the backend's REST protocol: where the endpoints live and what the
// login payload fields are called. Deployments of the backend have disagreed on both (locale-specific
// field names, "Account" vs "account", "tareas" vs "tasks"), so everything here is configuration.
package wire

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldNames maps the client's stable login fields to the names used on the wire.
type FieldNames struct {
	Username string
	Password string
	Token    string
	Role     string
}

// DefaultFieldNames returns the field names used by the current backend.
func DefaultFieldNames() FieldNames {
	return FieldNames{
		Username: "nombreUsuario",
		Password: "contrasena",
		Token:    "token",
		Role:     "rol",
	}
}

// LoginRequest builds the login body with the wire field names.
func (f FieldNames) LoginRequest(username, password string) map[string]string {
	return map[string]string{
		f.Username: username,
		f.Password: password,
	}
}

// LoginResponse builds the login response body with the wire field names.
func (f FieldNames) LoginResponse(token, username, role string) map[string]string {
	return map[string]string{
		f.Token:    token,
		f.Username: username,
		f.Role:     role,
	}
}

// Lookup returns the string stored under name in a decoded JSON object.
// Non-string values are formatted so numeric tokens are not lost.
func Lookup(body map[string]any, name string) string {
	v, ok := body[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Endpoints locates the backend.
type Endpoints struct {
	// BaseURL is the API root, e.g. "http://localhost:8080/api" or "/api" behind a proxy.
	BaseURL string
	// LoginPath is appended to BaseURL, e.g. "/account/login".
	LoginPath string
	// TasksResource is the collection segment, e.g. "tareas".
	TasksResource string
}

// DefaultEndpoints returns the endpoints of a locally running backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		BaseURL:       "http://localhost:8080/api",
		LoginPath:     "/account/login",
		TasksResource: "tareas",
	}
}

// Validate reports configuration that would produce unusable URLs.
func (e Endpoints) Validate() error {
	if strings.TrimSpace(e.BaseURL) == "" {
		return fmt.Errorf("api base url is required")
	}
	if _, err := url.Parse(e.BaseURL); err != nil {
		return fmt.Errorf("api base url %q is invalid: %w", e.BaseURL, err)
	}
	if strings.Trim(e.LoginPath, "/") == "" {
		return fmt.Errorf("login path is required")
	}
	if strings.Trim(e.TasksResource, "/") == "" {
		return fmt.Errorf("tasks resource is required")
	}
	return nil
}

// LoginURL returns the absolute login URL.
func (e Endpoints) LoginURL() string {
	return e.base() + "/" + strings.Trim(e.LoginPath, "/")
}

// TasksURL returns the collection URL.
func (e Endpoints) TasksURL() string {
	return e.base() + "/" + strings.Trim(e.TasksResource, "/")
}

// TaskURL returns the URL of a single task.
func (e Endpoints) TaskURL(id string) string {
	return e.TasksURL() + "/" + url.PathEscape(id)
}

// BasePath returns the path component of BaseURL, used by the backend to mount its routes.
func (e Endpoints) BasePath() string {
	u, err := url.Parse(e.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}

// LoginRoute and TasksRoute are the server-side paths relative to the host.
func (e Endpoints) LoginRoute() string {
	return e.BasePath() + "/" + strings.Trim(e.LoginPath, "/")
}

func (e Endpoints) TasksRoute() string {
	return e.BasePath() + "/" + strings.Trim(e.TasksResource, "/")
}

func (e Endpoints) base() string {
	return strings.TrimRight(e.BaseURL, "/")
}
