// Package storage persists the "already delivered" record set.
//
// Two namespaces share one schema:
//   - "news":   fingerprints of delivered news items
//   - "alerts": event+lead keys of delivered calendar alerts
//
// A key present in the store is never re-enqueued; absence is the only
// signal of "not yet delivered". Keys are permanent: expiring a key still
// reachable from current feeds or events would allow a duplicate post.
package storage
