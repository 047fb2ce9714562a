package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const corpusSchema = `
CREATE TABLE IF NOT EXISTS npc_names (
    name    TEXT NOT NULL,
    race    TEXT NOT NULL DEFAULT 'Unknown',
    UNIQUE (name, race)
);
CREATE TABLE IF NOT EXISTS traits (
    trait   TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS encounters (
    tier        TEXT NOT NULL,
    description TEXT NOT NULL,
    UNIQUE (tier, description)
);
`

// Encounter difficulty tiers, selected by party level.
const (
	tierLow  = "low"
	tierMid  = "mid"
	tierHigh = "high"
)

func setupCorpusSchema(db *sql.DB) error {
	_, err := db.Exec(corpusSchema)
	return err
}

// CorpusStore wraps the SQLite database holding the raw training corpus:
// NPC names with their races, the trait pool, and the encounter pool. It
// replaces the flat CSV/JSON data files the assistant started out with.
type CorpusStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCorpusStore(db *sql.DB, logger *slog.Logger) *CorpusStore {
	return &CorpusStore{
		db:     db,
		logger: logger,
	}
}

// AddNames inserts names for a race, ignoring pairs already present.
// It returns the number of newly-inserted rows.
func (c *CorpusStore) AddNames(ctx context.Context, names []string, race string) (int, error) {
	if race == "" {
		race = "Unknown"
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	added := 0
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		res, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO npc_names (name, race) VALUES (?, ?)`, name, race)
		if err != nil {
			return 0, fmt.Errorf("failed to insert name %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	c.logger.Info("Corpus names added",
		slog.String("race", race),
		slog.Int("added", added),
		slog.Int("submitted", len(names)),
	)
	return added, nil
}

// NamesByRace returns every stored name grouped by race.
func (c *CorpusStore) NamesByRace(ctx context.Context) (map[string][]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT name, race FROM npc_names ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	byRace := make(map[string][]string)
	for rows.Next() {
		var name, race string
		if err = rows.Scan(&name, &race); err != nil {
			return nil, err
		}
		byRace[race] = append(byRace[race], name)
	}
	return byRace, rows.Err()
}

// Races returns the distinct races present in the corpus, sorted.
func (c *CorpusStore) Races(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT race FROM npc_names ORDER BY race`)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var races []string
	for rows.Next() {
		var race string
		if err = rows.Scan(&race); err != nil {
			return nil, err
		}
		races = append(races, race)
	}
	return races, rows.Err()
}

// ImportNamesCSV ingests a name,race CSV stream into the corpus. A header
// row is tolerated. Rows with a missing race column land under "Unknown".
func (c *CorpusStore) ImportNamesCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	total := 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read csv record: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "name") {
				continue
			}
		}
		race := "Unknown"
		if len(record) > 1 {
			race = strings.TrimSpace(record[1])
		}
		added, err := c.AddNames(ctx, []string{record[0]}, race)
		if err != nil {
			return total, err
		}
		total += added
	}
	return total, nil
}

// AddTrait adds a single trait to the pool. It returns false if the trait
// already existed.
func (c *CorpusStore) AddTrait(ctx context.Context, trait string) (bool, error) {
	trait = strings.TrimSpace(trait)
	if trait == "" {
		return false, fmt.Errorf("trait must not be empty")
	}
	res, err := c.db.ExecContext(ctx, `INSERT OR IGNORE INTO traits (trait) VALUES (?)`, trait)
	if err != nil {
		return false, fmt.Errorf("failed to insert trait: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RandomTrait returns one trait drawn uniformly from the pool. It returns
// sql.ErrNoRows when the pool is empty.
func (c *CorpusStore) RandomTrait(ctx context.Context) (string, error) {
	var trait string
	err := c.db.QueryRowContext(ctx, `SELECT trait FROM traits ORDER BY RANDOM() LIMIT 1`).Scan(&trait)
	return trait, err
}

// ImportTraitsCSV ingests a one-column trait CSV stream, tolerating a
// header row. It returns the number of newly-inserted traits.
func (c *CorpusStore) ImportTraitsCSV(ctx context.Context, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	total := 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return total, fmt.Errorf("failed to read csv record: %w", err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "trait") {
				continue
			}
		}
		added, err := c.AddTrait(ctx, record[0])
		if err != nil {
			return total, err
		}
		if added {
			total++
		}
	}
	return total, nil
}

// AddEncounter adds an encounter description under a difficulty tier.
func (c *CorpusStore) AddEncounter(ctx context.Context, tier, description string) (bool, error) {
	switch tier {
	case tierLow, tierMid, tierHigh:
	default:
		return false, fmt.Errorf("unknown encounter tier %q", tier)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return false, fmt.Errorf("encounter description must not be empty")
	}
	res, err := c.db.ExecContext(ctx, `INSERT OR IGNORE INTO encounters (tier, description) VALUES (?, ?)`, tier, description)
	if err != nil {
		return false, fmt.Errorf("failed to insert encounter: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RandomEncounter returns an encounter suited to the given party level:
// levels up to 3 draw from the low tier, up to 10 from the mid tier, and
// everything above from the high tier. It returns sql.ErrNoRows when the
// tier holds no encounters.
func (c *CorpusStore) RandomEncounter(ctx context.Context, level int) (string, error) {
	var description string
	err := c.db.QueryRowContext(ctx,
		`SELECT description FROM encounters WHERE tier = ? ORDER BY RANDOM() LIMIT 1`,
		tierForLevel(level)).Scan(&description)
	return description, err
}

func tierForLevel(level int) string {
	switch {
	case level <= 3:
		return tierLow
	case level <= 10:
		return tierMid
	default:
		return tierHigh
	}
}

// encounterDocument matches the original encounters.json layout.
type encounterDocument struct {
	LowLevel  []string `json:"low_level"`
	MidLevel  []string `json:"mid_level"`
	HighLevel []string `json:"high_level"`
}

// ImportEncountersJSON ingests an encounter document with low_level,
// mid_level and high_level arrays. It returns the number of
// newly-inserted encounters.
func (c *CorpusStore) ImportEncountersJSON(ctx context.Context, r io.Reader) (int, error) {
	var doc encounterDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to decode encounters document: %w", err)
	}

	total := 0
	for tier, descriptions := range map[string][]string{
		tierLow:  doc.LowLevel,
		tierMid:  doc.MidLevel,
		tierHigh: doc.HighLevel,
	} {
		for _, description := range descriptions {
			added, err := c.AddEncounter(ctx, tier, description)
			if err != nil {
				return total, err
			}
			if added {
				total++
			}
		}
	}
	c.logger.Info("Encounters imported", slog.Int("added", total))
	return total, nil
}
