package fetch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCachePath(t *testing.T) {
	path := CachePath("", "https://example.com/docs")
	if filepath.Dir(path) != DefaultCacheDir {
		t.Fatalf("unexpected cache dir: %s", filepath.Dir(path))
	}
	if !strings.HasSuffix(path, ".html") {
		t.Fatalf("expected html cache file, got %s", path)
	}
	if CachePath("x", "https://a.test") == CachePath("x", "https://b.test") {
		t.Fatal("expected distinct paths for distinct urls")
	}
}

func TestSaveAndLoadCache(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "nested", "cache.html")
	content := "<html>cache</html>"

	if _, ok, err := LoadFromCache(path); err != nil || ok {
		t.Fatalf("expected cache miss, got ok=%v err=%v", ok, err)
	}
	if err := SaveToCache(path, content); err != nil {
		t.Fatalf("save cache failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read cache failed: %v", err)
	}
	if string(data) != content {
		t.Fatalf("unexpected content: %s", string(data))
	}
	got, ok, err := LoadFromCache(path)
	if err != nil || !ok || got != content {
		t.Fatalf("LoadFromCache()=%q,%v,%v", got, ok, err)
	}
}
