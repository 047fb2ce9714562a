package namegen

import (
	"testing"
)

// setupRegistry creates an empty Registry with the default window width.
func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(DefaultWindowWidth)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

// setupTrainedRegistry is a convenience helper that also trains a small
// default data set: two global names and one category.
func setupTrainedRegistry(t *testing.T) *Registry {
	t.Helper()
	r := setupRegistry(t)
	if added := r.Train([]string{"Thorin", "Lyra"}, ""); added != 2 {
		t.Fatalf("setup: Train() added = %d, want 2", added)
	}
	if added := r.Train([]string{"Elrond", "Elora"}, "Elf"); added != 2 {
		t.Fatalf("setup: Train(Elf) added = %d, want 2", added)
	}
	return r
}
