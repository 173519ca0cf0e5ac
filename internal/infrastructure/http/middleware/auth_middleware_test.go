package middleware

import (
	stdErrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/interview-scheduler/errors"
	"github.com/johnquangdev/interview-scheduler/pkg/jwt"
)

type expiredValidator struct{}

func (expiredValidator) ValidateToken(string) (*jwt.Claims, error) {
	return nil, jwt.ErrTokenExpired
}

func serve(t *testing.T, v TokenValidator, header string) (echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/meetings", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	c := e.NewContext(req, httptest.NewRecorder())
	err := EchoAuth(v)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
	return c, err
}

func appCode(t *testing.T, err error) errors.ErrorCode {
	t.Helper()
	var appErr errors.AppError
	require.True(t, stdErrors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode)
	return appErr.Code
}

func TestEchoAuth_ValidToken(t *testing.T) {
	m := jwt.NewManager("secret", time.Hour)
	token, err := m.GenerateOperatorToken("ops")
	require.NoError(t, err)

	c, err := serve(t, m, "Bearer "+token)
	require.NoError(t, err)

	operator, ok := GetOperator(c)
	assert.True(t, ok)
	assert.Equal(t, "ops", operator)
}

func TestEchoAuth_MissingToken(t *testing.T) {
	_, err := serve(t, jwt.NewManager("secret", time.Hour), "")
	assert.Equal(t, errors.ErrorCode_UNAUTHENTICATED, appCode(t, err))

	_, err = serve(t, jwt.NewManager("secret", time.Hour), "Basic abc")
	assert.Equal(t, errors.ErrorCode_UNAUTHENTICATED, appCode(t, err))
}

func TestEchoAuth_InvalidToken(t *testing.T) {
	_, err := serve(t, jwt.NewManager("secret", time.Hour), "Bearer garbage")
	assert.Equal(t, errors.ErrorCode_AUTH_INVALID_TOKEN, appCode(t, err))
}

func TestEchoAuth_ExpiredToken(t *testing.T) {
	_, err := serve(t, expiredValidator{}, "bearer abc")
	assert.Equal(t, errors.ErrorCode_AUTH_TOKEN_EXPIRED, appCode(t, err))
}
