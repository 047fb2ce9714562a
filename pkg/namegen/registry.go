package namegen

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
)

// DefaultWindowWidth is the window width used by NewDefaultRegistry and by
// Import when a saved model does not record one.
const DefaultWindowWidth = 2

// Registry owns one global state table plus one state table per category,
// along with the provenance record of every raw name ever trained into it.
// It is the sole mutable owner of its tables; generation borrows read
// access and the persistence codec borrows the full state.
type Registry struct {
	width      int
	global     StateTable
	categories map[string]StateTable
	provenance []string
	seen       map[string]struct{}
	counts     map[string]int
	logger     *slog.Logger
}

// NewRegistry creates an empty Registry with the given window width. The
// width is fixed for the lifetime of the Registry.
func NewRegistry(windowWidth int) (*Registry, error) {
	if windowWidth < 1 {
		return nil, fmt.Errorf("window width must be at least 1, got %d", windowWidth)
	}
	return &Registry{
		width:      windowWidth,
		global:     make(StateTable),
		categories: make(map[string]StateTable),
		seen:       make(map[string]struct{}),
		counts:     make(map[string]int),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, nil
}

// NewDefaultRegistry creates an empty Registry with DefaultWindowWidth.
func NewDefaultRegistry() *Registry {
	r, _ := NewRegistry(DefaultWindowWidth)
	return r
}

// SetLogger sets the logger for the Registry. By default, all logs are
// discarded. Providing a `log/slog.Logger` will enable logging for
// training, category removal, and persistence operations.
func (r *Registry) SetLogger(logger *slog.Logger) {
	if logger != nil {
		r.logger = logger
	}
}

// WindowWidth returns the fixed window width of the Registry.
func (r *Registry) WindowWidth() int {
	return r.width
}

// ListCategories returns the names of all trained categories in sorted order.
func (r *Registry) ListCategories() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RemoveCategory deletes a category's state table and trained-name count,
// and prunes every provenance entry recorded under that category. It
// returns false without side effects if the category is unknown.
func (r *Registry) RemoveCategory(name string) bool {
	if _, ok := r.categories[name]; !ok {
		return false
	}
	delete(r.categories, name)
	delete(r.counts, name)

	prefix := name + ":"
	kept := r.provenance[:0]
	removed := 0
	for _, entry := range r.provenance {
		if strings.HasPrefix(entry, prefix) {
			delete(r.seen, entry)
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	r.provenance = kept

	r.logger.Info("Category removed",
		slog.String("category", name),
		slog.Int("provenance_pruned", removed),
	)
	return true
}

// Reset discards all trained state, returning the Registry to the empty
// state it had at creation. The window width is retained.
func (r *Registry) Reset() {
	r.global = make(StateTable)
	r.categories = make(map[string]StateTable)
	r.provenance = nil
	r.seen = make(map[string]struct{})
	r.counts = make(map[string]int)
	r.logger.Info("Registry reset")
}

// tableFor returns the table generation should read from: the category's
// own table when the category is known and non-empty, otherwise the
// global table. An empty global table is returned as-is; Generate treats
// that as the no-trained-data case.
func (r *Registry) tableFor(category string) StateTable {
	if category != "" {
		if t, ok := r.categories[category]; ok && len(t) > 0 {
			return t
		}
	}
	return r.global
}
