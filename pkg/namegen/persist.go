package namegen

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// ErrCorruptModel reports a model payload that decoded incorrectly or
// violated a structural invariant. It is distinct from a missing file, so
// callers can fall back to a fresh Registry on absence without silently
// swallowing data loss.
var ErrCorruptModel = errors.New("corrupt model data")

// modelFile is the serializable representation of a Registry. The field
// layout matches the on-disk JSON document; every field is optional on
// read and defaults to an empty model.
type modelFile struct {
	WindowWidth    int                            `json:"window_width"`
	Model          map[string][]string            `json:"model"`
	CategoryModels map[string]map[string][]string `json:"category_models"`
	TrainingData   []string                       `json:"training_data"`
	TrainingStats  map[string]int                 `json:"training_stats"`
}

// Export serializes the full state of the Registry as an indented JSON
// document and writes it to w. Successor-sequence order is preserved
// exactly, since it encodes the relative transition frequencies.
func (r *Registry) Export(w io.Writer) error {
	categories := make(map[string]map[string][]string, len(r.categories))
	for name, table := range r.categories {
		categories[name] = table
	}
	payload := modelFile{
		WindowWidth:    r.width,
		Model:          r.global,
		CategoryModels: categories,
		TrainingData:   r.provenance,
		TrainingStats:  r.counts,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	r.logger.Info("Model exported",
		slog.Int("window_width", r.width),
		slog.Int("global_states", len(r.global)),
		slog.Int("categories", len(r.categories)),
		slog.Int("training_names", len(r.provenance)),
	)
	return nil
}

// Import reads a JSON model document and reconstructs a Registry from it.
// Missing fields default to an empty model with DefaultWindowWidth, so
// documents written by older schema versions remain loadable. A payload
// that fails to decode or violates a structural invariant returns an error
// wrapping ErrCorruptModel.
func Import(rd io.Reader) (*Registry, error) {
	var payload modelFile
	if err := json.NewDecoder(rd).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode json model: %s", ErrCorruptModel, err)
	}

	if payload.WindowWidth == 0 {
		payload.WindowWidth = DefaultWindowWidth
	}
	if payload.WindowWidth < 1 {
		return nil, fmt.Errorf("%w: window width %d is below 1", ErrCorruptModel, payload.WindowWidth)
	}

	r, err := NewRegistry(payload.WindowWidth)
	if err != nil {
		return nil, err
	}

	if err := importTable(r.global, payload.Model, r.width); err != nil {
		return nil, fmt.Errorf("%w: global model: %s", ErrCorruptModel, err)
	}
	for name, states := range payload.CategoryModels {
		table := make(StateTable, len(states))
		if err := importTable(table, states, r.width); err != nil {
			return nil, fmt.Errorf("%w: category %q: %s", ErrCorruptModel, name, err)
		}
		r.categories[name] = table
	}

	for _, entry := range payload.TrainingData {
		if _, dup := r.seen[entry]; dup {
			continue
		}
		r.seen[entry] = struct{}{}
		r.provenance = append(r.provenance, entry)
	}

	// Keep the table/count mappings aligned: every category gets a count,
	// and a count without a table gets an empty table.
	for name, count := range payload.TrainingStats {
		if _, ok := r.categories[name]; !ok {
			r.categories[name] = make(StateTable)
		}
		r.counts[name] = count
	}
	for name := range r.categories {
		if _, ok := r.counts[name]; !ok {
			r.counts[name] = 0
		}
	}

	return r, nil
}

// importTable validates and copies a decoded state mapping into a table.
func importTable(dst StateTable, src map[string][]string, width int) error {
	for state, successors := range src {
		if n := len([]rune(state)); n != width {
			return fmt.Errorf("state %q has %d characters, want %d", state, n, width)
		}
		if len(successors) == 0 {
			return fmt.Errorf("state %q has an empty successor list", state)
		}
		for _, next := range successors {
			if len([]rune(next)) != 1 {
				return fmt.Errorf("state %q has multi-character successor %q", state, next)
			}
		}
		copied := make([]string, len(successors))
		copy(copied, successors)
		dst[state] = copied
	}
	return nil
}

// SaveFile atomically writes the Registry's exported form to path, creating
// parent directories as needed. The document is staged in memory first, so
// a failed write leaves both the previous file and the in-memory Registry
// intact.
func (r *Registry) SaveFile(path string) error {
	var buf bytes.Buffer
	if err := r.Export(&buf); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadFile reads and imports the model document at path. A missing file is
// reported with an error satisfying errors.Is(err, fs.ErrNotExist); callers
// typically recover from that by starting a fresh Registry. A file that
// exists but cannot be decoded reports ErrCorruptModel instead.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(f)

	r, err := Import(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load model file %s: %w", path, err)
	}
	return r, nil
}
