package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultCacheDir is used when caching is enabled without a directory.
var DefaultCacheDir = filepath.Join(".html2swim", "cache")

// CachePath returns the file a fetched URL is stored under in dir.
func CachePath(dir, urlStr string) string {
	if dir == "" {
		dir = DefaultCacheDir
	}
	h := sha256.Sum256([]byte(urlStr))
	name := hex.EncodeToString(h[:]) + ".html"
	return filepath.Join(dir, name)
}

// LoadFromCache returns the cached markup at path. ok is false when nothing
// has been cached yet.
func LoadFromCache(path string) (content string, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

func SaveToCache(path string, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0600)
}
