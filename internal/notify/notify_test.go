package notify

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFileReplacesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.xml")

	if err := WriteFile(path, []byte("<KAOSModel id=\"M1\"/>")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := WriteFile(path, []byte("<KAOSModel id=\"M2\"/>")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "<KAOSModel id=\"M2\"/>" {
		t.Errorf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the model file, got %d entries", len(entries))
	}
}

func TestWriteFileMissingDir(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "absent", "model.xml"), []byte("x"))
	if err == nil {
		t.Fatal("expected an error for a missing directory")
	}
}

func TestModelWatcherSeesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.xml")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	received := make(chan string, 10)
	watcher := NewModelWatcher(path, func(p string) {
		received <- p
	}, WithDebounce(20*time.Millisecond))
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	// Give fsnotify a moment to register
	time.Sleep(50 * time.Millisecond)

	if err := WriteFile(path, []byte("v2")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case p := <-received:
		if p != path {
			t.Errorf("expected %s, got %s", path, p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
	}
}

func TestModelWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.xml")

	received := make(chan string, 10)
	watcher := NewModelWatcher(path, func(p string) {
		received <- p
	}, WithDebounce(0))
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "other.xml"), []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case p := <-received:
		t.Fatalf("unexpected callback for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestModelWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.xml")

	received := make(chan string, 10)
	watcher := NewModelWatcher(path, func(p string) {
		received <- p
	}, WithDebounce(150*time.Millisecond))
	if err := watcher.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer watcher.Stop()

	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte{byte('a' + i)}, 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	select {
	case <-received:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for change")
	}
	select {
	case <-received:
		t.Fatal("burst should produce a single callback")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestModelWatcherStartMissingDir(t *testing.T) {
	watcher := NewModelWatcher(filepath.Join(t.TempDir(), "absent", "model.xml"), nil)
	if err := watcher.Start(); err == nil {
		watcher.Stop()
		t.Fatal("expected an error for a missing directory")
	}
	watcher.Stop()
}
