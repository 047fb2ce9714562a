package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// setupTestCorpus creates a SQLite-backed CorpusStore in a temp directory.
func setupTestCorpus(t *testing.T) (context.Context, *CorpusStore) {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "corpus.db")
	db, err := initDB(dbFile + "?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := setupCorpusSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return context.Background(), NewCorpusStore(db, logger)
}

func TestAddNames(t *testing.T) {
	ctx, corpus := setupTestCorpus(t)

	added, err := corpus.AddNames(ctx, []string{"Thorin", "Balin", "  ", "Thorin"}, "Dwarf")
	if err != nil {
		t.Fatalf("AddNames() error = %v", err)
	}
	if added != 2 {
		t.Errorf("AddNames() added = %d, want 2", added)
	}

	// The same name under a different race is a distinct corpus row.
	added, err = corpus.AddNames(ctx, []string{"Thorin"}, "Elf")
	if err != nil {
		t.Fatalf("AddNames() error = %v", err)
	}
	if added != 1 {
		t.Errorf("AddNames(Elf) added = %d, want 1", added)
	}

	races, err := corpus.Races(ctx)
	if err != nil {
		t.Fatalf("Races() error = %v", err)
	}
	if want := []string{"Dwarf", "Elf"}; !reflect.DeepEqual(races, want) {
		t.Errorf("Races() = %v, want %v", races, want)
	}
}

func TestImportNamesCSV(t *testing.T) {
	ctx, corpus := setupTestCorpus(t)

	csvData := "name,race\nThorin,Dwarf\nLyra,Human\nElrond,Elf\nNameless\n"
	added, err := corpus.ImportNamesCSV(ctx, strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("ImportNamesCSV() error = %v", err)
	}
	if added != 4 {
		t.Errorf("ImportNamesCSV() added = %d, want 4", added)
	}

	byRace, err := corpus.NamesByRace(ctx)
	if err != nil {
		t.Fatalf("NamesByRace() error = %v", err)
	}
	if got := byRace["Dwarf"]; len(got) != 1 || got[0] != "Thorin" {
		t.Errorf("NamesByRace()[Dwarf] = %v, want [Thorin]", got)
	}
	if got := byRace["Unknown"]; len(got) != 1 || got[0] != "Nameless" {
		t.Errorf("NamesByRace()[Unknown] = %v, want [Nameless]", got)
	}
}

func TestTraits(t *testing.T) {
	ctx, corpus := setupTestCorpus(t)

	if _, err := corpus.RandomTrait(ctx); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("RandomTrait() on empty pool error = %v, want sql.ErrNoRows", err)
	}

	added, err := corpus.ImportTraitsCSV(ctx, strings.NewReader("trait\nAlways hums old battle songs.\nCollects shiny buttons.\n"))
	if err != nil {
		t.Fatalf("ImportTraitsCSV() error = %v", err)
	}
	if added != 2 {
		t.Errorf("ImportTraitsCSV() added = %d, want 2", added)
	}

	trait, err := corpus.RandomTrait(ctx)
	if err != nil {
		t.Fatalf("RandomTrait() error = %v", err)
	}
	if trait == "" {
		t.Error("RandomTrait() returned an empty trait")
	}
}

func TestTierForLevel(t *testing.T) {
	testCases := []struct {
		level int
		want  string
	}{
		{1, tierLow},
		{3, tierLow},
		{4, tierMid},
		{10, tierMid},
		{11, tierHigh},
		{20, tierHigh},
	}
	for _, tc := range testCases {
		if got := tierForLevel(tc.level); got != tc.want {
			t.Errorf("tierForLevel(%d) = %q, want %q", tc.level, got, tc.want)
		}
	}
}

func TestEncounters(t *testing.T) {
	ctx, corpus := setupTestCorpus(t)

	doc := `{
		"low_level": ["A pack of goblins ambushes the road."],
		"mid_level": ["An ogre demands a toll at the bridge."],
		"high_level": ["An ancient red dragon circles overhead."]
	}`
	added, err := corpus.ImportEncountersJSON(ctx, strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ImportEncountersJSON() error = %v", err)
	}
	if added != 3 {
		t.Errorf("ImportEncountersJSON() added = %d, want 3", added)
	}

	low, err := corpus.RandomEncounter(ctx, 2)
	if err != nil {
		t.Fatalf("RandomEncounter(2) error = %v", err)
	}
	if !strings.Contains(low, "goblins") {
		t.Errorf("RandomEncounter(2) = %q, want the low-tier encounter", low)
	}

	high, err := corpus.RandomEncounter(ctx, 15)
	if err != nil {
		t.Fatalf("RandomEncounter(15) error = %v", err)
	}
	if !strings.Contains(high, "dragon") {
		t.Errorf("RandomEncounter(15) = %q, want the high-tier encounter", high)
	}

	if _, err := corpus.AddEncounter(ctx, "legendary", "nope"); err == nil {
		t.Error("AddEncounter() with unknown tier error = nil, want error")
	}
}
