// Package tempfile tracks filesystem paths created while handling a single
// request and removes them when the request ends.
package tempfile

import (
	"log/slog"
	"os"
	"sync"
)

// Registry records temporary paths owned by one request.
// The zero value is not usable; create one with New.
type Registry struct {
	mu     sync.Mutex
	paths  []string
	seen   map[string]struct{}
	logger *slog.Logger

	// remove deletes a path. Overridden in tests.
	remove func(string) error
}

// New creates an empty Registry.
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		seen:   make(map[string]struct{}),
		logger: logger,
		remove: os.RemoveAll,
	}
}

// Register records path for removal by ReleaseAll.
// Empty paths and paths already registered are ignored.
func (r *Registry) Register(path string) {
	if path == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[path]; ok {
		return
	}
	r.seen[path] = struct{}{}
	r.paths = append(r.paths, path)
}

// Paths returns a copy of the registered paths in registration order.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// ReleaseAll removes every registered path, newest first, so files are
// deleted before the directories that hold them. Paths that no longer exist
// are skipped. Removal failures are logged and never returned; calling
// ReleaseAll more than once is safe.
func (r *Registry) ReleaseAll() {
	r.mu.Lock()
	paths := make([]string, len(r.paths))
	copy(paths, r.paths)
	r.mu.Unlock()

	for i := len(paths) - 1; i >= 0; i-- {
		p := paths[i]
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			continue
		}
		if err := r.remove(p); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("failed to remove temporary path",
				slog.String("path", p),
				slog.String("error", err.Error()),
			)
		}
	}
}
