package remote

import "errors"

var (
	// ErrNotConfigured is returned by every read and upsert when the
	// connection secrets are missing
	ErrNotConfigured = errors.New("remote backend not configured")
	// ErrNotFound means the query succeeded and matched no row
	ErrNotFound = errors.New("remote row not found")
	// ErrUnknownTable is returned for table names outside the storefront schema
	ErrUnknownTable = errors.New("unknown remote table")
	// ErrMissingID is returned when an upserted row has no string id
	ErrMissingID = errors.New("row has no id")
)
