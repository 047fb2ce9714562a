package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"sort"
)

// Server wires the model manager, corpus store, and API handlers onto a
// single mux.
type Server struct {
	config   *Config
	db       *sql.DB
	logger   *slog.Logger
	mm       *ModelManager
	corpus   *CorpusStore
	namesAPI *NamesAPI
	npcAPI   *NPCAPI
	modelAPI *ModelAPI
	mux      *http.ServeMux
}

// NewServer creates the server object and registers all routes.
func NewServer(config *Config, logger *slog.Logger, db *sql.DB) (*Server, error) {
	mm, err := NewModelManager(config.Server.ModelPath, logger)
	if err != nil {
		return nil, err
	}
	corpus := NewCorpusStore(db, logger)

	server := &Server{
		config:   config,
		db:       db,
		logger:   logger,
		mm:       mm,
		corpus:   corpus,
		namesAPI: NewNamesAPI(mm, logger),
		npcAPI:   NewNPCAPI(mm, corpus, logger),
		modelAPI: NewModelAPI(mm, corpus, logger),
		mux:      http.NewServeMux(),
	}

	server.namesAPI.RegisterRoutes(server.mux)
	server.npcAPI.RegisterRoutes(server.mux)
	server.modelAPI.RegisterRoutes(server.mux)
	server.mux.HandleFunc("/api/health", server.handleHealthCheck)

	return server, nil
}

// handleHealthCheck reports liveness, left unauthenticated so something
// like docker can probe it.
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// trainFromCorpus feeds every corpus name into the model: all names into
// the global model, plus each race's names into that race's category.
func trainFromCorpus(ctx context.Context, corpus *CorpusStore, mm *ModelManager) error {
	byRace, err := corpus.NamesByRace(ctx)
	if err != nil {
		return err
	}

	// Deterministic training order keeps repeated cold starts comparable.
	races := make([]string, 0, len(byRace))
	for race := range byRace {
		races = append(races, race)
	}
	sort.Strings(races)

	var all []string
	for _, race := range races {
		all = append(all, byRace[race]...)
	}
	mm.Train(all, "")

	for _, race := range races {
		mm.Train(byRace[race], race)
	}
	return nil
}
