// Package storage provides the persistent key-value store the client uses to survive restarts.
package storage

import (
	"fmt"
	"path/filepath"

	"ragchat/src/services/storage/repositories"
)

// Well-known keys.
const (
	KeyUser          = "user"
	KeyTheme         = "theme"
	KeySelectedModel = "selectedModel"
	KeyChatHistories = "chatHistories"
)

// KeyValueStore is opaque string-keyed storage with get/set/remove.
// Get reports ok=false for a missing key; that is not an error.
type KeyValueStore interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver rooted at dir.
func Open(driver, dir string) (KeyValueStore, error) {
	switch driver {
	case "", DriverFile:
		return repositories.NewFileStore(filepath.Join(dir, "storage.json"))
	case DriverSQLite:
		return repositories.NewSQLiteStore(filepath.Join(dir, "storage.db"))
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

var (
	_ KeyValueStore = (*repositories.FileStore)(nil)
	_ KeyValueStore = (*repositories.SQLiteStore)(nil)
	_ KeyValueStore = (*repositories.MemoryStore)(nil)
)
