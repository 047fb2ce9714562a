package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"

	"github.com/iamboehnke/dnd-dungeon-master-assistant/pkg/namegen"
)

// NPCAPI holds the dependencies for the NPC and encounter API handlers.
type NPCAPI struct {
	mm     *ModelManager
	corpus *CorpusStore
	logger *slog.Logger
}

// NewNPCAPI creates a new instance of the NPCAPI.
func NewNPCAPI(mm *ModelManager, corpus *CorpusStore, logger *slog.Logger) *NPCAPI {
	return &NPCAPI{
		mm:     mm,
		corpus: corpus,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/npc endpoints.
func (n *NPCAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/npc/generate", n.handleGenerateNPC)
	mux.HandleFunc("/api/npc/party", n.handleParty)
	mux.HandleFunc("/api/npc/encounter", n.handleEncounter)
}

// NPC is a fully-assembled non-player character.
type NPC struct {
	Name  string `json:"name"`
	Race  string `json:"race"`
	Trait string `json:"trait,omitempty"`
}

type NPCRequest struct {
	Race   string `json:"race"`
	Prefix string `json:"prefix"`
}

type PartyRequest struct {
	Size   int    `json:"size"`
	Prefix string `json:"prefix"`
}

// handleGenerateNPC assembles one NPC: a race, a generated name, and a
// random trait from the corpus.
func (n *NPCAPI) handleGenerateNPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req NPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	npc, err := n.assembleNPC(r, req.Race, req.Prefix)
	if err != nil {
		if errors.Is(err, namegen.ErrInvalidPrefix) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		n.logger.Error("Failed to assemble NPC", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("NPC generation failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, npc)
}

// handleParty assembles a party of NPCs, spreading races across the party
// where the corpus offers enough of them.
func (n *NPCAPI) handleParty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req PartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	size := req.Size
	if size == 0 {
		size = 4
	}
	if size < 1 || size > 20 {
		respondWithError(w, http.StatusBadRequest, "Party size must be between 1 and 20")
		return
	}

	races, err := n.corpus.Races(r.Context())
	if err != nil {
		n.logger.Error("Failed to list corpus races", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Party generation failed: %v", err))
		return
	}

	party := make([]NPC, 0, size)
	for i := 0; i < size; i++ {
		race := ""
		if i < len(races) {
			race = races[i]
		} else if len(races) > 0 {
			race = races[rand.IntN(len(races))]
		}
		npc, err := n.assembleNPC(r, race, req.Prefix)
		if err != nil {
			n.logger.Error("Failed to assemble party member", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Party generation failed: %v", err))
			return
		}
		party = append(party, *npc)
	}
	respondWithJSON(w, http.StatusOK, map[string][]NPC{"party": party})
}

// handleEncounter returns a random encounter for the party level in the
// `level` query parameter.
func (n *NPCAPI) handleEncounter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil || level < 1 || level > 20 {
		respondWithError(w, http.StatusBadRequest, "level must be an integer between 1 and 20")
		return
	}

	encounter, err := n.corpus.RandomEncounter(r.Context(), level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "No encounters loaded for this level")
			return
		}
		n.logger.Error("Failed to pick encounter", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Encounter lookup failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"level":     level,
		"encounter": encounter,
	})
}

// assembleNPC picks a race (random from the corpus when none is given),
// generates a name for it, and attaches a random trait when the trait pool
// has any.
func (n *NPCAPI) assembleNPC(r *http.Request, race, prefix string) (*NPC, error) {
	if race == "" {
		races, err := n.corpus.Races(r.Context())
		if err != nil {
			return nil, err
		}
		if len(races) > 0 {
			race = races[rand.IntN(len(races))]
		} else {
			race = "Unknown"
		}
	}

	name, err := n.mm.Generate(
		namegen.WithCategory(race),
		namegen.WithPrefix(prefix),
	)
	if err != nil {
		return nil, err
	}

	trait, err := n.corpus.RandomTrait(r.Context())
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return &NPC{
		Name:  name,
		Race:  race,
		Trait: trait,
	}, nil
}
