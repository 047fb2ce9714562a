package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/iamboehnke/dnd-dungeon-master-assistant/pkg/namegen"
)

// ModelAPI holds the dependencies for the model persistence and corpus
// ingestion handlers.
type ModelAPI struct {
	mm     *ModelManager
	corpus *CorpusStore
	logger *slog.Logger
}

// NewModelAPI creates a new instance of the ModelAPI.
func NewModelAPI(mm *ModelManager, corpus *CorpusStore, logger *slog.Logger) *ModelAPI {
	return &ModelAPI{
		mm:     mm,
		corpus: corpus,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/model and /api/corpus endpoints.
func (m *ModelAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/model/save", m.handleSave)
	mux.HandleFunc("/api/model/load", m.handleLoad)
	mux.HandleFunc("/api/model/reset", m.handleReset)
	mux.HandleFunc("/api/model/export", m.handleExport)
	mux.HandleFunc("/api/model/import", m.handleImport)
	mux.HandleFunc("/api/model/backups", m.handleBackups)
	mux.HandleFunc("/api/model/backups/restore", m.handleRestore)
	mux.HandleFunc("/api/corpus/names", m.handleCorpusNames)
	mux.HandleFunc("/api/corpus/traits", m.handleCorpusTraits)
	mux.HandleFunc("/api/corpus/encounters", m.handleCorpusEncounters)
	mux.HandleFunc("/api/corpus/retrain", m.handleRetrain)
}

// handleSave persists the in-memory model to its canonical path.
func (m *ModelAPI) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := m.mm.Save(); err != nil {
		m.logger.Error("Failed to save model", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Save failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Model saved"})
}

// handleLoad replaces the in-memory model with the saved one.
func (m *ModelAPI) handleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := m.mm.Load(); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			respondWithError(w, http.StatusNotFound, "No saved model found")
		case errors.Is(err, namegen.ErrCorruptModel):
			respondWithError(w, http.StatusConflict, fmt.Sprintf("Saved model is corrupt: %v", err))
		default:
			m.logger.Error("Failed to load model", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Load failed: %v", err))
		}
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Model loaded"})
}

// handleReset clears all trained state from the in-memory model.
func (m *ModelAPI) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	m.mm.Reset()
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Model reset"})
}

// handleExport streams the model document as a download.
func (m *ModelAPI) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="name_generator.json"`)
	if err := m.mm.Export(w); err != nil {
		m.logger.Error("Failed to export model", "error", err)
	}
}

// handleImport replaces the in-memory model with an uploaded JSON document.
func (m *ModelAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if err := m.mm.Import(r.Body); err != nil {
		if errors.Is(err, namegen.ErrCorruptModel) {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Import failed: %v", err))
			return
		}
		m.logger.Error("Failed to import model", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Import failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Model imported"})
}

// handleBackups lists backups on GET and creates one on POST.
func (m *ModelAPI) handleBackups(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		backups, err := m.mm.ListBackups()
		if err != nil {
			m.logger.Error("Failed to list backups", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to list backups: %v", err))
			return
		}
		if backups == nil {
			backups = []string{}
		}
		respondWithJSON(w, http.StatusOK, map[string][]string{"backups": backups})
	case http.MethodPost:
		name, err := m.mm.Backup()
		if err != nil {
			m.logger.Error("Failed to create backup", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Backup failed: %v", err))
			return
		}
		respondWithJSON(w, http.StatusCreated, map[string]string{"backup": name})
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type RestoreRequest struct {
	Name string `json:"name"`
}

// handleRestore replaces the model with a named backup.
func (m *ModelAPI) handleRestore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req RestoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if req.Name == "" {
		respondWithError(w, http.StatusBadRequest, "Backup name is required")
		return
	}
	if err := m.mm.Restore(req.Name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			respondWithError(w, http.StatusNotFound, "Backup not found")
			return
		}
		m.logger.Error("Failed to restore backup", "name", req.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Restore failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Model restored", "backup": req.Name})
}

// handleCorpusNames ingests a name,race CSV document into the corpus and
// trains the model on the new names.
func (m *ModelAPI) handleCorpusNames(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	added, err := m.corpus.ImportNamesCSV(r.Context(), r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("CSV import failed: %v", err))
		return
	}
	if err := trainFromCorpus(r.Context(), m.corpus, m.mm); err != nil {
		m.logger.Error("Failed to retrain after corpus import", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Import succeeded but retraining failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"added": added})
}

// handleCorpusTraits ingests a trait CSV document.
func (m *ModelAPI) handleCorpusTraits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	added, err := m.corpus.ImportTraitsCSV(r.Context(), r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("CSV import failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"added": added})
}

// handleCorpusEncounters ingests an encounters JSON document.
func (m *ModelAPI) handleCorpusEncounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	added, err := m.corpus.ImportEncountersJSON(r.Context(), r.Body)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Encounter import failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"added": added})
}

// handleRetrain rebuilds the model from the full corpus.
func (m *ModelAPI) handleRetrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	m.mm.Reset()
	if err := trainFromCorpus(r.Context(), m.corpus, m.mm); err != nil {
		m.logger.Error("Failed to retrain from corpus", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Retraining failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, m.mm.Stats())
}
