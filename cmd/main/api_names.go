package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iamboehnke/dnd-dungeon-master-assistant/pkg/namegen"
)

// NamesAPI holds the dependencies for the name-generation API handlers.
type NamesAPI struct {
	mm     *ModelManager
	logger *slog.Logger
}

// NewNamesAPI creates a new instance of the NamesAPI.
func NewNamesAPI(mm *ModelManager, logger *slog.Logger) *NamesAPI {
	return &NamesAPI{
		mm:     mm,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/names endpoints.
func (n *NamesAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/names/generate", n.handleGenerate)
	mux.HandleFunc("/api/names/train", n.handleTrain)
	mux.HandleFunc("/api/names/categories", n.handleCategories)
	mux.HandleFunc("/api/names/categories/", n.handleCategoryByName)
	mux.HandleFunc("/api/names/sample", n.handleSample)
	mux.HandleFunc("/api/names/stats", n.handleStats)
}

type GenerateRequest struct {
	Category  string `json:"category"`
	Prefix    string `json:"prefix"`
	MinLength int    `json:"min_length"`
	MaxLength int    `json:"max_length"`
	Count     int    `json:"count"`
	Unique    bool   `json:"unique"`
}

type TrainRequest struct {
	Names    []string `json:"names"`
	Category string   `json:"category"`
}

// handleGenerate produces one or more names from the trained models.
func (n *NamesAPI) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}

	opts := []namegen.GenerateOption{
		namegen.WithCategory(req.Category),
		namegen.WithPrefix(req.Prefix),
	}
	if req.MinLength > 0 {
		opts = append(opts, namegen.WithMinLength(req.MinLength))
	}
	if req.MaxLength > 0 {
		opts = append(opts, namegen.WithMaxLength(req.MaxLength))
	}
	count := req.Count
	if count == 0 {
		count = 1
	}

	names, err := n.mm.GenerateMany(count, req.Unique, opts...)
	if err != nil {
		if errors.Is(err, namegen.ErrInvalidLength) || errors.Is(err, namegen.ErrInvalidPrefix) || errors.Is(err, namegen.ErrInvalidCount) {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		n.logger.Error("Failed to generate names", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"names": names})
}

// handleTrain ingests a list of names into the global or a category model.
func (n *NamesAPI) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
		return
	}
	if len(req.Names) == 0 {
		respondWithError(w, http.StatusBadRequest, "At least one name is required")
		return
	}

	added := n.mm.Train(req.Names, req.Category)
	respondWithJSON(w, http.StatusOK, map[string]int{"added": added})
}

// handleCategories lists the trained categories.
func (n *NamesAPI) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]string{"categories": n.mm.ListCategories()})
}

// handleCategoryByName removes a single category model.
func (n *NamesAPI) handleCategoryByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/names/categories/")
	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Category name not specified")
		return
	}
	if r.Method != http.MethodDelete {
		w.Header().Set("Allow", "DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !n.mm.RemoveCategory(name) {
		respondWithError(w, http.StatusNotFound, "Category not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSample returns names the model was actually trained on, for preview.
func (n *NamesAPI) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	count := 5
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "count must be a positive integer")
			return
		}
		count = parsed
	}
	names := n.mm.SampleKnownNames(r.URL.Query().Get("category"), count)
	respondWithJSON(w, http.StatusOK, map[string][]string{"names": names})
}

// handleStats returns model statistics.
func (n *NamesAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, n.mm.Stats())
}
