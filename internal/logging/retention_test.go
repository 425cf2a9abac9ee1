package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCleanupOldLogsRemovesExpiredMatches(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.AddDate(0, 0, -40)

	write := func(name string, mtime time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		return path
	}

	expired := write("ftpswatch-20240101T000000.000Z.log", old)
	fresh := write("ftpswatch-20240301T000000.000Z.log", now)
	current := write("ftpswatch-20240102T000000.000Z.log", old)
	unrelated := write("notes.txt", old)

	removed := CleanupOldLogs(NewNop(), 30, now, RetentionTarget{
		Dir:     dir,
		Pattern: "ftpswatch-*.log",
		Exclude: []string{current},
	})
	if removed != 1 {
		t.Fatalf("expected 1 file removed, got %d", removed)
	}
	if _, err := os.Stat(expired); !os.IsNotExist(err) {
		t.Fatalf("expected expired log removed, stat err=%v", err)
	}
	for _, keep := range []string{fresh, current, unrelated} {
		if _, err := os.Stat(keep); err != nil {
			t.Fatalf("expected %s kept: %v", keep, err)
		}
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	if removed := CleanupOldLogs(nil, 0, time.Now(), RetentionTarget{Dir: t.TempDir()}); removed != 0 {
		t.Fatalf("expected no removals when disabled, got %d", removed)
	}
}
