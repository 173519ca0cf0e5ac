package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// ScopeOperator grants access to the operator API
const ScopeOperator = "operator"

// Claims represents operator token claims
type Claims struct {
	Operator string `json:"operator"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}
