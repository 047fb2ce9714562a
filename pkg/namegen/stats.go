package namegen

import (
	"math/rand/v2"
	"strings"
)

// RegistryStats holds aggregated statistics for an entire Registry,
// including one entry per category model.
type RegistryStats struct {
	WindowWidth  int                      `json:"window_width"`
	TrainedNames int                      `json:"trained_names"` // Total provenance entries across all models.
	GlobalStates int                      `json:"global_states"` // Unique states in the global model.
	Categories   map[string]CategoryStats `json:"categories"`
}

// CategoryStats holds aggregated statistics for a single category model.
type CategoryStats struct {
	States       int `json:"states"`        // Unique states in this category's table.
	TrainedNames int `json:"trained_names"` // Distinct names trained into this category.
}

// Stats returns a snapshot of statistics for the Registry.
func (r *Registry) Stats() RegistryStats {
	categories := make(map[string]CategoryStats, len(r.categories))
	for name, table := range r.categories {
		categories[name] = CategoryStats{
			States:       len(table),
			TrainedNames: r.counts[name],
		}
	}
	return RegistryStats{
		WindowWidth:  r.width,
		TrainedNames: len(r.provenance),
		GlobalStates: len(r.global),
		Categories:   categories,
	}
}

// SampleKnownNames returns up to count previously-trained names, drawn
// without replacement from the provenance record. With an empty category it
// samples the names trained into the global model. Intended for previews
// and debugging, not generation.
func (r *Registry) SampleKnownNames(category string, count int) []string {
	var pool []string
	if category != "" {
		prefix := category + ":"
		for _, entry := range r.provenance {
			if strings.HasPrefix(entry, prefix) {
				pool = append(pool, entry[len(prefix):])
			}
		}
	} else {
		for _, entry := range r.provenance {
			if !strings.Contains(entry, ":") {
				pool = append(pool, entry)
			}
		}
	}

	if count > len(pool) {
		count = len(pool)
	}
	if count <= 0 {
		return nil
	}
	perm := rand.Perm(len(pool))
	out := make([]string, count)
	for i := range out {
		out[i] = pool[perm[i]]
	}
	return out
}
