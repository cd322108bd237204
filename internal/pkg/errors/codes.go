package errors

import "net/http"

const (
	CodeInvalidQuery     = "INVALID_QUERY"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInvalidRequest   = "INVALID_REQUEST"
)

var (
	// ErrInvalidQuery - нет центра, координаты вне диапазона или радиус <= 0
	ErrInvalidQuery = New(
		CodeInvalidQuery,
		"Invalid search query",
		http.StatusBadRequest,
	)

	// ErrStoreUnavailable - хранилище не ответило или истёк таймаут запроса
	ErrStoreUnavailable = New(
		CodeStoreUnavailable,
		"Point store unavailable",
		http.StatusServiceUnavailable,
	)

	// ErrInvalidRadius - радиус вне 100 м - 50 км (только HTTP API)
	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		CodeInvalidRequest,
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
