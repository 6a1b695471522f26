package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/koios/jokeview/internal/jokes"
	"go.uber.org/zap"
)

// JokeHandler serves the local joke API, shaped like the public one
type JokeHandler struct {
	store  jokes.Store
	logger *zap.Logger
}

// NewJokeHandler creates a new joke handler
func NewJokeHandler(store jokes.Store, logger *zap.Logger) *JokeHandler {
	return &JokeHandler{
		store:  store,
		logger: logger,
	}
}

// RegisterRoutes registers the joke routes on r, usually an /api subrouter
func (h *JokeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/random_joke", h.handleRandom).Methods(http.MethodGet)
	r.HandleFunc("/jokes", h.handleList).Methods(http.MethodGet)
	r.HandleFunc("/jokes/{id}", h.handleGet).Methods(http.MethodGet)
}

// handleRandom handles GET /random_joke - returns any joke
func (h *JokeHandler) handleRandom(w http.ResponseWriter, r *http.Request) {
	joke, err := h.store.Random(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, joke)
}

// handleList handles GET /jokes - returns every joke
func (h *JokeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, list)
}

// handleGet handles GET /jokes/{id} - returns one joke
func (h *JokeHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		writeError(w, h.logger, http.StatusBadRequest, "joke id must be a positive integer")
		return
	}

	joke, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, joke)
}

func (h *JokeHandler) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, jokes.ErrNotFound) {
		writeError(w, h.logger, http.StatusNotFound, "joke not found")
		return
	}
	h.logger.Error("Joke store failed", zap.Error(err))
	writeError(w, h.logger, http.StatusInternalServerError, "Internal server error")
}
