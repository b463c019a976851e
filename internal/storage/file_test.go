package storage

import (
	"context"
	"path/filepath"
	"testing"

	"fxwire/pkg/logx"
)

func openFileStore(t *testing.T, dir string) Store {
	t.Helper()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(dir, "state.json")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return st
}

func TestFileStoreRoundtrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openFileStore(t, t.TempDir())
	defer st.Close()

	ok, err := st.IsRecorded(ctx, NamespaceNews, "abc123")
	if err != nil {
		t.Fatalf("IsRecorded error: %v", err)
	}
	if ok {
		t.Fatal("fresh store must report unrecorded")
	}

	if err := st.Record(ctx, NamespaceNews, "abc123"); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	ok, err = st.IsRecorded(ctx, NamespaceNews, "abc123")
	if err != nil {
		t.Fatalf("IsRecorded error: %v", err)
	}
	if !ok {
		t.Fatal("recorded key must be found")
	}
}

func TestFileStoreNamespacesIsolated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openFileStore(t, t.TempDir())
	defer st.Close()

	if err := st.Record(ctx, NamespaceNews, "k1"); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	ok, err := st.IsRecorded(ctx, NamespaceAlerts, "k1")
	if err != nil {
		t.Fatalf("IsRecorded error: %v", err)
	}
	if ok {
		t.Fatal("a news key must not be visible in the alerts namespace")
	}
}

func TestFileStoreRecordIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openFileStore(t, t.TempDir())
	defer st.Close()

	for i := 0; i < 3; i++ {
		if err := st.Record(ctx, NamespaceAlerts, "ev1_30"); err != nil {
			t.Fatalf("Record #%d error: %v", i, err)
		}
	}
	ok, _ := st.IsRecorded(ctx, NamespaceAlerts, "ev1_30")
	if !ok {
		t.Fatal("key must stay recorded")
	}
}

func TestFileStoreSurvivesRestart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	st := openFileStore(t, dir)
	if err := st.Record(ctx, NamespaceNews, "fp-restart"); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	st2 := openFileStore(t, dir)
	defer st2.Close()
	ok, err := st2.IsRecorded(ctx, NamespaceNews, "fp-restart")
	if err != nil {
		t.Fatalf("IsRecorded error: %v", err)
	}
	if !ok {
		t.Fatal("record must survive a reopen")
	}
}

func TestFileStoreEmptyKeyIgnored(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	st := openFileStore(t, t.TempDir())
	defer st.Close()

	if err := st.Record(ctx, NamespaceNews, "  "); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	ok, _ := st.IsRecorded(ctx, NamespaceNews, "")
	if ok {
		t.Fatal("empty key must never read as recorded")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "bolt", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
