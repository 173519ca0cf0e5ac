package errors

// ErrorCode identifies an application error in API responses
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 0

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS   ErrorCode = 1003
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1004
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1005

	// Authentication
	ErrorCode_AUTH_INVALID_TOKEN     ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED     ErrorCode = 2001
	ErrorCode_AUTH_INVALID_SIGNATURE ErrorCode = 2002

	// Call pipeline
	ErrorCode_CALL_NOT_FOUND          ErrorCode = 3000
	ErrorCode_CALL_IN_PROGRESS        ErrorCode = 3001
	ErrorCode_CALL_INVALID_CONTACT    ErrorCode = 3002
	ErrorCode_SCHEDULING_FAILED       ErrorCode = 3100
	ErrorCode_NOTIFICATION_EXHAUSTED  ErrorCode = 3200
	ErrorCode_PERSISTENCE_UNAVAILABLE ErrorCode = 3300
	ErrorCode_UPSTREAM_UNAVAILABLE    ErrorCode = 3400
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                 "HTTP_OK",
	ErrorCode_INTERNAL:                "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:        "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:               "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:          "ALREADY_EXISTS",
	ErrorCode_UNAUTHENTICATED:         "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:         "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:      "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:      "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_SIGNATURE:  "AUTH_INVALID_SIGNATURE",
	ErrorCode_CALL_NOT_FOUND:          "CALL_NOT_FOUND",
	ErrorCode_CALL_IN_PROGRESS:        "CALL_IN_PROGRESS",
	ErrorCode_CALL_INVALID_CONTACT:    "CALL_INVALID_CONTACT",
	ErrorCode_SCHEDULING_FAILED:       "SCHEDULING_FAILED",
	ErrorCode_NOTIFICATION_EXHAUSTED:  "NOTIFICATION_EXHAUSTED",
	ErrorCode_PERSISTENCE_UNAVAILABLE: "PERSISTENCE_UNAVAILABLE",
	ErrorCode_UPSTREAM_UNAVAILABLE:    "UPSTREAM_UNAVAILABLE",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
