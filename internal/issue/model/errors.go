package model

import "errors"

var (
	// ErrConnectivity indicates that the tracker is unreachable or rejected the credentials.
	ErrConnectivity = errors.New("tracker unreachable")
	// ErrInvalidQuery indicates a query spec without a project key.
	ErrInvalidQuery = errors.New("invalid issue query")
	// ErrQueryFailed indicates that the tracker rejected a single query.
	ErrQueryFailed = errors.New("issue query failed")
)
