package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"TaskClient/session"

	"github.com/golang-jwt/jwt/v5"
)

var errMissingAuthorization = errors.New("missing authorization header")

// Claims are the identity carried by a verified token.
type Claims struct {
	Username string
	Role     string
}

// CreateToken generates a JWT token with the given username and role.
// The token is signed using the HS256 algorithm and expires after the configured TTL.
// The raw token is returned; clients add the "Bearer" scheme themselves.
//
// Returns:
// - string: The signed token.
// - error: An error if the token generation fails.
func (s *Server) CreateToken(username string, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256,
		jwt.MapClaims{
			"username": username,
			"Role":     role,
			"exp":      s.clock.Now().Add(s.cfg.TokenTTL).Unix(),
		})
	return token.SignedString(s.cfg.SecretKey)
}

// VerifyToken verifies the validity of a JWT token and extracts the username and role from its claims.
// If the token is invalid, expired or does not contain the role claim, it returns an error.
func (s *Server) VerifyToken(tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.cfg.SecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.clock.Now))
	if err != nil {
		return Claims{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}
	role, ok := claims["Role"].(string)
	if !ok {
		return Claims{}, fmt.Errorf("role not found in token claims")
	}
	username, _ := claims["username"].(string)
	return Claims{Username: username, Role: role}, nil
}

// authorize checks the "Authorization" header of the request for a valid bearer token.
//
// Returns:
// - Claims: The identity associated with the token.
// - error: An error if the authorization token is missing or invalid.
func (s *Server) authorize(req *http.Request) (Claims, error) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return Claims{}, errMissingAuthorization
	}
	prefix := session.Scheme + " "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		header = strings.TrimSpace(header[len(prefix):])
	}
	return s.VerifyToken(header)
}
