package domain

import "context"

// Database defines lifecycle operations for the local storage backing the
// persisted token. Each implementation owns its own migration files.
type Database interface {
	Migrate(ctx context.Context) error
	Close() error
}
