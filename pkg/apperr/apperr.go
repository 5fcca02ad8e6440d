package apperr

import "errors"

// ErrNotFound signals that a record does not exist for the caller's
// tenant. Records belonging to other tenants surface this same error.
var ErrNotFound = errors.New("record not found")

// ErrEmptyBulkSet signals a bulk operation with no ids
var ErrEmptyBulkSet = errors.New("job id set must not be empty")

// ErrMissingTenant signals a request without a resolvable tenant id
var ErrMissingTenant = errors.New("missing tenant identifier")
