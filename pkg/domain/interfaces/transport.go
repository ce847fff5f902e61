package interfaces

import (
	"context"
	"errors"
	"io"
)

// Transport errors. Implementations wrap these so callers can react to
// specific mirror responses without knowing the concrete client.
var (
	// ErrBlocked is returned when a mirror refuses the request with
	// HTTP 403, typically the CDN filtering on client identity.
	ErrBlocked = errors.New("mirror refused request")

	// ErrNotFound is returned when the mirror does not carry the file.
	ErrNotFound = errors.New("file not found on mirror")
)

// Transport fetches a single URL with the given client identity. One
// call is one bounded attempt: implementations apply the per-attempt
// timeout and release all network resources when the returned body is
// closed. Tests substitute deterministic fakes.
type Transport interface {
	Fetch(ctx context.Context, url, identity string) (io.ReadCloser, error)
}
