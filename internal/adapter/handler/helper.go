package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/interview-scheduler/errors"
	"github.com/johnquangdev/interview-scheduler/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/interview-scheduler/internal/usecase/errors"
)

// Response shapes
type success struct {
	Code    interface{} `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type errs struct {
	Code    interface{}       `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// getRequestID tries to read X-Request-ID from the request
func getRequestID(c echo.Context) string {
	if c == nil || c.Request() == nil {
		return ""
	}
	if id := c.Request().Header.Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// HandleSuccess writes a standardized success response using provided logger
func HandleSuccess(logger *zap.Logger, c echo.Context, data interface{}) error {
	return handleStatus(logger, c, http.StatusOK, data)
}

// HandleAccepted writes a standardized 202 response for work continued in the background
func HandleAccepted(logger *zap.Logger, c echo.Context, data interface{}) error {
	return handleStatus(logger, c, http.StatusAccepted, data)
}

func handleStatus(logger *zap.Logger, c echo.Context, status int, data interface{}) error {
	resp := success{
		Code:    int(errors.ErrorCode_HTTP_OK),
		Message: "success",
		Data:    data,
	}

	if logger != nil {
		logger.Info("http.response.success",
			zap.String("request_id", getRequestID(c)),
			zap.String("path", c.Path()),
			zap.Int("status", status),
		)
	}

	return c.JSON(status, resp)
}

// HandleError centralizes error handling and logging using provided logger
func HandleError(logger *zap.Logger, c echo.Context, err error) error {
	reqID := getRequestID(c)

	var appErr errors.AppError
	if stdErrors.As(err, &appErr) {
		if logger != nil {
			logger.Error("http.response.error",
				zap.String("request_id", reqID),
				zap.String("path", c.Path()),
				zap.Any("app_code", appErr.Code),
				zap.Error(err),
			)
		}

		info := ""
		if appErr.Raw != nil {
			info = appErr.Raw.Error()
		}

		body := errs{
			Code:    appErr.Code,
			Message: appErr.Message,
			Info:    info,
			Details: appErr.Details,
		}

		return c.JSON(appErr.HTTPCode, body)
	}

	var httpErr *echo.HTTPError
	if stdErrors.As(err, &httpErr) {
		code := errors.ErrorCode_INVALID_ARGUMENT
		switch httpErr.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			code = errors.ErrorCode_NOT_FOUND
		case http.StatusUnauthorized:
			code = errors.ErrorCode_UNAUTHENTICATED
		case http.StatusInternalServerError:
			code = errors.ErrorCode_INTERNAL
		}
		return c.JSON(httpErr.Code, errs{
			Code:    code,
			Message: http.StatusText(httpErr.Code),
		})
	}

	if logger != nil {
		logger.Error("http.response.error",
			zap.String("request_id", reqID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	body := errs{
		Code:    errors.ErrorCode_INTERNAL,
		Message: "Internal server error",
		Info:    err.Error(),
	}

	return c.JSON(http.StatusInternalServerError, body)
}

// ErrorHandler adapts HandleError to echo's HTTPErrorHandler so middleware errors share the body shape
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if hErr := HandleError(logger, c, err); hErr != nil && logger != nil {
			logger.Error("http.response.write_failed", zap.Error(hErr))
		}
	}
}

// outcomeError maps a failed pipeline outcome to its API error.
// Successful outcomes return nil.
func outcomeError(o *entities.Outcome) error {
	var appErr errors.AppError
	switch o.Status {
	case entities.OutcomeCompleted, entities.OutcomeCompletedFallback, entities.OutcomeAlreadyCompleted:
		return nil
	case entities.OutcomeFetchFailed:
		if stdErrors.Is(o.Err, usecaseErrors.ErrCallNotFound) {
			appErr = errors.ErrCallNotFound(o.CallID)
		} else {
			appErr = errors.ErrUpstreamUnavailable("call_provider", o.Err)
		}
	case entities.OutcomeInvalidContact:
		appErr = errors.ErrInvalidContact(o.CallID, o.Err)
	case entities.OutcomePersistenceFailed:
		appErr = errors.ErrPersistenceUnavailable(string(o.Stage), o.Err).WithDetail("call_id", o.CallID)
	case entities.OutcomeSchedulingFailed:
		appErr = errors.ErrSchedulingFailed(o.CallID, o.Err)
	case entities.OutcomeNotificationExhausted:
		attempts := 0
		if o.Notification != nil {
			attempts = o.Notification.Attempts
		}
		appErr = errors.ErrNotificationExhausted(o.CallID, o.MeetingLink, attempts, o.Err)
	case entities.OutcomeInProgress:
		appErr = errors.ErrCallInProgress(o.CallID)
	default:
		appErr = errors.ErrInternal(o.Err)
	}
	return appErr.WithDetail("status", string(o.Status))
}
