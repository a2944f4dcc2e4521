package model

import (
	"context"
)

// Backend abstracts the question-answering service.
//
// This interface is defined in the model package (not the backend package) to
// avoid import cycles: the backend client imports model for BackendReply, and
// model uses Backend without importing the client.
type Backend interface {
	// Ask sends one effective query and returns the raw reply. Any non-2xx
	// status or transport failure is returned as an error.
	Ask(ctx context.Context, query string) (BackendReply, error)

	// Ping checks if the backend is reachable.
	Ping(ctx context.Context) error

	// BaseURL returns the API base the backend was built for.
	BaseURL() string
}
