package storage

import "time"

// Namespaces used by the pipeline.
const (
	NamespaceNews   = "news"
	NamespaceAlerts = "alerts"
)

// Config configures storage.
//
// Driver values:
//   - "file":   dependency-free file backend (snapshot + jsonl journal)
//   - "sqlite": SQLite database file
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}
