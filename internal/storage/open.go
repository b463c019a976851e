package storage

import (
	"context"
	"errors"
	"strings"

	"fxwire/pkg/logx"
)

// Store is the dedup persistence API.
//
// A single logical writer (the dispatch consumer) calls Record; producers
// call IsRecorded concurrently. Record is idempotent: recording an existing
// key is a no-op, not an error.
type Store interface {
	IsRecorded(ctx context.Context, ns, key string) (bool, error)
	Record(ctx context.Context, ns, key string) error
	Close() error
}

// Open initializes the configured store. An empty or missing backing file on
// first run is valid and means "nothing recorded yet".
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "file":
		return openFile(cfg, log)
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + cfg.Driver)
	}
}
