package models

// DefaultRole is assigned when the login response does not carry a role.
const DefaultRole = "User"

// User represents the logged-in user. It only lives as long as the session.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Credentials are the login form values. Both fields are required.
type Credentials struct {
	Username string `json:"username" validate:"required,fieldValidator"`
	Password string `json:"password" validate:"required"`
}
