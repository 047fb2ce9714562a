package namegen

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	r := setupTrainedRegistry(t)
	// Duplicate training so some successor lists carry repeated entries,
	// which the round trip must keep in order.
	r.Train([]string{"Thorin"}, "")

	var buf bytes.Buffer
	if err := r.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	restored, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if restored.WindowWidth() != r.WindowWidth() {
		t.Errorf("WindowWidth = %d, want %d", restored.WindowWidth(), r.WindowWidth())
	}
	if !reflect.DeepEqual(restored.global, r.global) {
		t.Errorf("global table mismatch after round trip:\ngot  %v\nwant %v", restored.global, r.global)
	}
	if !reflect.DeepEqual(restored.categories, r.categories) {
		t.Errorf("category tables mismatch after round trip:\ngot  %v\nwant %v", restored.categories, r.categories)
	}
	if !reflect.DeepEqual(restored.provenance, r.provenance) {
		t.Errorf("provenance mismatch after round trip:\ngot  %v\nwant %v", restored.provenance, r.provenance)
	}
	if !reflect.DeepEqual(restored.counts, r.counts) {
		t.Errorf("counts mismatch after round trip:\ngot  %v\nwant %v", restored.counts, r.counts)
	}
}

func TestImportDefaultsMissingFields(t *testing.T) {
	r, err := Import(strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if r.WindowWidth() != DefaultWindowWidth {
		t.Errorf("WindowWidth = %d, want %d", r.WindowWidth(), DefaultWindowWidth)
	}
	stats := r.Stats()
	if stats.TrainedNames != 0 || stats.GlobalStates != 0 || len(stats.Categories) != 0 {
		t.Errorf("Stats() = %+v, want empty", stats)
	}
}

func TestImportAlignsCategoryCounts(t *testing.T) {
	// A category may appear with a table but no count (or the reverse) in
	// documents from older versions; both sides get defaulted.
	payload := `{
		"category_models": {"Elf": {"^^": ["e"]}},
		"training_stats": {"Orc": 3}
	}`
	r, err := Import(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	stats := r.Stats()
	if got := stats.Categories["Elf"].TrainedNames; got != 0 {
		t.Errorf("Elf TrainedNames = %d, want 0", got)
	}
	if got := stats.Categories["Orc"].TrainedNames; got != 3 {
		t.Errorf("Orc TrainedNames = %d, want 3", got)
	}
	want := []string{"Elf", "Orc"}
	if got := r.ListCategories(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListCategories() = %v, want %v", got, want)
	}
}

func TestImportCorrupt(t *testing.T) {
	testCases := []struct {
		name    string
		payload string
	}{
		{
			name:    "Malformed JSON",
			payload: `{"window_width": 2,`,
		},
		{
			name:    "Negative window width",
			payload: `{"window_width": -2}`,
		},
		{
			name:    "Wrong state width",
			payload: `{"model": {"abc": ["d"]}}`,
		},
		{
			name:    "Empty successor list",
			payload: `{"model": {"ab": []}}`,
		},
		{
			name:    "Multi-character successor",
			payload: `{"model": {"ab": ["cd"]}}`,
		},
		{
			name:    "Corrupt category table",
			payload: `{"category_models": {"Elf": {"e": ["l"]}}}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tc.payload))
			if !errors.Is(err, ErrCorruptModel) {
				t.Errorf("Import() error = %v, want %v", err, ErrCorruptModel)
			}
		})
	}
}

func TestSaveLoadFile(t *testing.T) {
	r := setupTrainedRegistry(t)
	path := filepath.Join(t.TempDir(), "models", "name_generator.json")

	if err := r.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	restored, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if !reflect.DeepEqual(restored.Stats(), r.Stats()) {
		t.Errorf("Stats() after reload = %+v, want %+v", restored.Stats(), r.Stats())
	}

	// Saving twice over the same path must succeed and stay loadable.
	if err := r.SaveFile(path); err != nil {
		t.Fatalf("second SaveFile() error = %v", err)
	}
	if _, err := LoadFile(path); err != nil {
		t.Fatalf("LoadFile() after resave error = %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadFile() error = %v, want fs.ErrNotExist", err)
	}
	if errors.Is(err, ErrCorruptModel) {
		t.Error("missing file must not be reported as corruption")
	}
}
