package storage

import "fmt"

// NewStore selects a backend by kind. The empty kind falls back to the
// in-memory store; the sqlite backend needs a database path and a build with
// the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	}
	return nil, fmt.Errorf("unknown store kind %q", kind)
}

// CloseIfSupported closes stores that hold external resources. The memory
// store has nothing to release and is left alone.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
