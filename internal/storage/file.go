package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fxwire/pkg/logx"
)

// fileStore is a dependency-free persistence backend.
//
// Files:
//   - <prefix>.sent.snapshot.json (periodic snapshot)
//   - <prefix>.sent.journal.jsonl (append-only journal)
//
// The journal is periodically compacted into the snapshot. Keys are loaded
// fully into memory; the expected volume (a few hundred items a day, kept
// forever) stays far below anything that would make that a problem.
type fileStore struct {
	log logx.Logger

	mu sync.Mutex

	snapshotPath string
	journalFile  *os.File

	// sent maps ns+"\x00"+key -> recorded-at unix milli.
	sent map[string]int64

	writes int
}

type sentRecord struct {
	NS  string `json:"ns"`
	Key string `json:"key"`
	At  int64  `json:"at"`
}

const compactEvery = 1000

func openFile(cfg Config, log logx.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return nil, errors.New("storage.path is required for file driver")
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	prefix := filepath.Join(dir, base)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	snapPath := prefix + ".sent.snapshot.json"
	journalPath := prefix + ".sent.journal.jsonl"

	sent := map[string]int64{}
	_ = loadSnapshot(snapPath, sent)
	_ = replayJournal(journalPath, sent)

	jf, err := os.OpenFile(journalPath, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o600)
	if err != nil {
		return nil, err
	}

	return &fileStore{
		log:          log,
		snapshotPath: snapPath,
		journalFile:  jf,
		sent:         sent,
	}, nil
}

func (s *fileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return nil
	}
	err := s.journalFile.Close()
	s.journalFile = nil
	return err
}

func (s *fileStore) IsRecorded(ctx context.Context, ns, key string) (bool, error) {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sent[sentKey(ns, key)]
	return ok, nil
}

func (s *fileStore) Record(ctx context.Context, ns, key string) error {
	_ = ctx
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journalFile == nil {
		return errors.New("dedup journal closed")
	}
	k := sentKey(ns, key)
	if _, ok := s.sent[k]; ok {
		// idempotent
		return nil
	}
	at := time.Now().UnixMilli()
	s.sent[k] = at

	enc := json.NewEncoder(s.journalFile)
	if err := enc.Encode(sentRecord{NS: ns, Key: key, At: at}); err != nil {
		return err
	}
	s.writes++
	if s.writes%compactEvery == 0 {
		if err := s.compactLocked(); err != nil {
			s.log.Debug("dedup compact failed", logx.Err(err))
		}
	}
	return nil
}

func (s *fileStore) compactLocked() error {
	out := make(map[string]int64, len(s.sent))
	for k, v := range s.sent {
		out[k] = v
	}

	tmp := s.snapshotPath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(out); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.snapshotPath); err != nil {
		return err
	}
	if err := s.journalFile.Truncate(0); err != nil {
		return err
	}
	_, err = s.journalFile.Seek(0, 2)
	return err
}

func loadSnapshot(path string, out map[string]int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	var m map[string]int64
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return err
	}
	for k, v := range m {
		out[k] = v
	}
	return nil
}

func replayJournal(path string, out map[string]int64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r sentRecord
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		if r.Key == "" {
			continue
		}
		out[sentKey(r.NS, r.Key)] = r.At
	}
	return sc.Err()
}

func sentKey(ns, key string) string { return ns + "\x00" + key }
