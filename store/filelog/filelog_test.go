package filelog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ncoquelet/RobinWood/store"
	"github.com/ncoquelet/RobinWood/store/testkit"
)

func TestFileLog_Conformance(t *testing.T) {
	var lastPath string
	testkit.RunLogConformance(t, func(t *testing.T) store.Log {
		t.Helper()
		lastPath = filepath.Join(t.TempDir(), "events.jsonl")
		log, err := Open(lastPath)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		return log
	}, func(t *testing.T, _ store.Log) store.Log {
		t.Helper()
		log, err := Open(lastPath)
		if err != nil {
			t.Fatalf("reopen failed: %v", err)
		}
		return log
	})
}

func TestFileLog_RejectsCorruptSequence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	lines := `{"seq":1,"data":"YQ=="}
{"seq":3,"data":"Yg=="}
`
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("Open of gapped log: %v, want ErrCorrupt", err)
	}
}

func TestFileLog_RejectsGarbageLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	if err := os.WriteFile(path, []byte("not json\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, store.ErrCorrupt) {
		t.Fatalf("Open of garbage log: %v, want ErrCorrupt", err)
	}
}

func TestFileLog_AppendIsDurable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := log.Append(ctx, []byte("payload")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	// The record must be on disk before Close.
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("append not durable: file empty")
	}
	if err := log.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
