package namegen

import (
	"log/slog"
	"strings"
)

// Train ingests a list of raw names into the Registry, updating the global
// model when category is empty or the category's own model otherwise. An
// unknown category is created on first use.
//
// Entries are trimmed of surrounding whitespace and lowercased; entries
// that are empty after trimming are skipped. A name is only recorded in
// provenance (and counted as added) the first time its provenance key is
// seen, but its window transitions are applied on every call, so training
// the same data twice deliberately strengthens the existing transition
// weights without double-counting the name itself.
//
// It returns the number of newly-added names.
func (r *Registry) Train(names []string, category string) int {
	table := r.global
	if category != "" {
		if _, ok := r.categories[category]; !ok {
			r.categories[category] = make(StateTable)
			r.counts[category] = 0
		}
		table = r.categories[category]
	}

	added := 0
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}

		key := name
		if category != "" {
			key = category + ":" + name
		}
		if _, known := r.seen[key]; !known {
			r.seen[key] = struct{}{}
			r.provenance = append(r.provenance, key)
			added++
		}

		addTransitions(table, name, r.width)
	}

	if category != "" {
		r.counts[category] += added
	}

	r.logger.Info("Training completed",
		slog.String("category", category),
		slog.Int("names_added", added),
		slog.Int("names_seen", len(names)),
		slog.Int("table_states", len(table)),
	)
	return added
}
