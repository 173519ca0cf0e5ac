package middleware

import (
	stdErrors "errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/interview-scheduler/errors"
	"github.com/johnquangdev/interview-scheduler/pkg/jwt"
)

const (
	// OperatorContextKey holds the authenticated operator name
	OperatorContextKey = "operator"
	// ClaimsContextKey holds the parsed *jwt.Claims
	ClaimsContextKey = "claims"
)

// TokenValidator validates operator bearer tokens
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// EchoAuth returns an Echo middleware that validates the operator bearer token and sets
// "operator" (string) and "claims" (*jwt.Claims) into the Echo context
func EchoAuth(validator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				if stdErrors.Is(err, jwt.ErrTokenExpired) {
					return errors.ErrTokenExpired()
				}
				return errors.ErrInvalidToken()
			}

			c.Set(ClaimsContextKey, claims)
			c.Set(OperatorContextKey, claims.Operator)

			return next(c)
		}
	}
}

// GetOperator returns the operator set by EchoAuth
func GetOperator(c echo.Context) (string, bool) {
	operator, ok := c.Get(OperatorContextKey).(string)
	return operator, ok && operator != ""
}

// Expected format: "Bearer <token>"
func extractToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
