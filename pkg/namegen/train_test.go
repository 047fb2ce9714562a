package namegen

import (
	"reflect"
	"testing"
)

func TestTrainBuildsStateTable(t *testing.T) {
	r := setupRegistry(t)

	if added := r.Train([]string{"Thorin", "Lyra"}, ""); added != 2 {
		t.Fatalf("Train() added = %d, want 2", added)
	}

	// The start state records each name's first letter in training order.
	start, ok := r.global["^^"]
	if !ok {
		t.Fatal("expected start state \"^^\" in the global table")
	}
	if want := []string{"t", "l"}; !reflect.DeepEqual(start, want) {
		t.Errorf("state \"^^\" successors = %v, want %v", start, want)
	}

	// "in" ends "thorin", so it must be able to transition to the end sentinel.
	in, ok := r.global["in"]
	if !ok {
		t.Fatal("expected state \"in\" in the global table")
	}
	found := false
	for _, next := range in {
		if next == "$" {
			found = true
		}
	}
	if !found {
		t.Errorf("state \"in\" successors = %v, want to include \"$\"", in)
	}
}

func TestTrainSuccessorAlphabet(t *testing.T) {
	r := setupTrainedRegistry(t)

	tables := map[string]StateTable{"": r.global}
	for name, table := range r.categories {
		tables[name] = table
	}
	for name, table := range tables {
		for state, successors := range table {
			if n := len([]rune(state)); n != r.WindowWidth() {
				t.Errorf("table %q: state %q has %d characters, want %d", name, state, n, r.WindowWidth())
			}
			if len(successors) == 0 {
				t.Errorf("table %q: state %q has an empty successor list", name, state)
			}
			for _, next := range successors {
				runes := []rune(next)
				if len(runes) != 1 {
					t.Errorf("table %q: state %q has multi-character successor %q", name, state, next)
					continue
				}
				c := runes[0]
				if c != EndSentinel && (c < 'a' || c > 'z') {
					t.Errorf("table %q: state %q has successor %q outside the trained alphabet", name, state, next)
				}
			}
		}
	}
}

func TestTrainSkipsBlankEntries(t *testing.T) {
	r := setupRegistry(t)

	added := r.Train([]string{"", "   ", "\t\n", "Kili"}, "")
	if added != 1 {
		t.Errorf("Train() added = %d, want 1", added)
	}
	if got := r.Stats().TrainedNames; got != 1 {
		t.Errorf("TrainedNames = %d, want 1", got)
	}
}

func TestTrainNormalizesWhitespaceAndCase(t *testing.T) {
	r := setupRegistry(t)

	r.Train([]string{"  ThOrIn  "}, "")
	names := r.SampleKnownNames("", 5)
	if len(names) != 1 || names[0] != "thorin" {
		t.Errorf("SampleKnownNames() = %v, want [thorin]", names)
	}
}

func TestTrainDeduplication(t *testing.T) {
	r := setupRegistry(t)

	if added := r.Train([]string{"Thorin"}, ""); added != 1 {
		t.Fatalf("first Train() added = %d, want 1", added)
	}
	firstLen := len(r.global["^^"])

	// Re-training the same name is a provenance no-op, but still
	// reinforces every transition.
	if added := r.Train([]string{"Thorin"}, ""); added != 0 {
		t.Errorf("second Train() added = %d, want 0", added)
	}
	if got := r.Stats().TrainedNames; got != 1 {
		t.Errorf("TrainedNames = %d, want 1", got)
	}
	if got := len(r.global["^^"]); got != firstLen*2 {
		t.Errorf("start state successors = %d after retraining, want %d", got, firstLen*2)
	}
}

func TestTrainSameNameDifferentCategories(t *testing.T) {
	r := setupRegistry(t)

	r.Train([]string{"Thorin"}, "")
	if added := r.Train([]string{"Thorin"}, "Dwarf"); added != 1 {
		t.Errorf("Train(Dwarf) added = %d, want 1: category keys are independent", added)
	}
	if got := r.Stats().TrainedNames; got != 2 {
		t.Errorf("TrainedNames = %d, want 2", got)
	}
}

func TestTrainCreatesCategory(t *testing.T) {
	r := setupRegistry(t)

	r.Train([]string{"Elrond"}, "Elf")
	stats := r.Stats()
	cat, ok := stats.Categories["Elf"]
	if !ok {
		t.Fatal("expected category \"Elf\" in stats")
	}
	if cat.TrainedNames != 1 {
		t.Errorf("Elf TrainedNames = %d, want 1", cat.TrainedNames)
	}
	if cat.States == 0 {
		t.Error("Elf States = 0, want > 0")
	}
	if got := r.ListCategories(); len(got) != 1 || got[0] != "Elf" {
		t.Errorf("ListCategories() = %v, want [Elf]", got)
	}
}

func TestTrainArbitraryUnicode(t *testing.T) {
	r := setupRegistry(t)

	// Non-alphabetic characters become ordinary states and successors.
	if added := r.Train([]string{"Žofia", "Al-Rashid", "雪女"}, ""); added != 3 {
		t.Errorf("Train() added = %d, want 3", added)
	}
	for state := range r.global {
		if n := len([]rune(state)); n != r.WindowWidth() {
			t.Errorf("state %q has %d characters, want %d", state, n, r.WindowWidth())
		}
	}
}
