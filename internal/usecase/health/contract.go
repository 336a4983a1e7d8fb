package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker runs a known-answer search.
type EngineChecker interface {
	SelfTest(ctx context.Context) error
}
