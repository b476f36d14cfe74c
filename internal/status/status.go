package status

import "errors"

var (
	ErrFetchFailed      = errors.New("dashboard: fetch failed")
	ErrUnexpectedStatus = errors.New("datasource: unexpected response status")
	ErrCircuitOpen      = errors.New("datasource: circuit breaker is open")
	ErrUnknownKind      = errors.New("resolve: unknown reference kind")
)
