package worker

import (
	"context"
)

// Worker - фоновый потребитель стрима
type Worker interface {
	// Start blocks until the worker stops, ctx is cancelled or its input ends.
	Start(ctx context.Context) error

	// Stop signals Start to return; it does not wait.
	Stop() error

	Name() string
}
