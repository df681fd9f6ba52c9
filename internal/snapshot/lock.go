package snapshot

import (
	"path/filepath"
	"sync"
)

// repoLocks holds one mutex per absolute working directory, shared by every
// Manager in the process.
var repoLocks sync.Map

func lockFor(dir string) *sync.Mutex {
	key := dir
	if abs, err := filepath.Abs(dir); err == nil {
		key = abs
	}
	key = filepath.Clean(key)
	mu, _ := repoLocks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
