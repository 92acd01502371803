package state

import (
	"context"
	"fmt"
	"log/slog"
)

// Backend kinds accepted by OpenBackend (the state_backend config key).
const (
	KindJSON   = "json"
	KindSQLite = "sqlite"
)

// Extension returns the file extension used for a backend kind.
func Extension(kind string) string {
	if kind == KindSQLite {
		return ".db"
	}

	return ".json"
}

// OpenBackend opens the backend of the given kind at path.
func OpenBackend(ctx context.Context, kind, path string, logger *slog.Logger) (Backend, error) {
	switch kind {
	case KindJSON, "":
		return NewJSONFile(path), nil
	case KindSQLite:
		return OpenSQLite(ctx, path, logger)
	default:
		return nil, fmt.Errorf("state: unknown backend %q", kind)
	}
}
