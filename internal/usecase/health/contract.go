package health

import "context"

// Pinger checks a backing store's availability. Both the chunk database and
// the usage counter store satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
