package goals

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/gorilla/mux"
	"github.com/learnos/backend/internal/decompose"
	"github.com/learnos/backend/internal/models"
)

type Handler struct {
	store      *Store
	decomposer *decompose.Decomposer
}

func NewHandler(store *Store, decomposer *decompose.Decomposer) *Handler {
	return &Handler{store: store, decomposer: decomposer}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// CreateGoal creates a learning goal, decomposes it into a concept graph,
// and links the two. A decomposition that fails graph validation rejects
// the whole request — no goal is left pointing at a malformed graph.
func (h *Handler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Goal = strings.TrimSpace(req.Goal)
	if req.Goal == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Goal is required"})
		return
	}

	graph, _, err := h.decomposer.Decompose(r.Context(), req.Goal)
	if err != nil {
		log.Printf("[goals] decomposition failed for %q: %v", req.Goal, err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to decompose goal into concepts"})
		return
	}

	goal, err := h.store.CreateGoal(userID, req.Goal)
	if err != nil {
		log.Printf("[goals] create goal failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create goal"})
		return
	}

	if err := h.store.SaveGraph(graph); err != nil {
		log.Printf("[goals] save graph failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save concept graph"})
		return
	}

	if err := h.store.LinkGraph(goal.ID, graph.ID); err != nil {
		log.Printf("[goals] link graph failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to link concept graph"})
		return
	}

	concepts := make([]string, 0, len(graph.Nodes))
	for name := range graph.Nodes {
		concepts = append(concepts, name)
	}
	sort.Strings(concepts)

	writeJSON(w, http.StatusCreated, models.CreateGoalResponse{
		GoalID:   goal.ID,
		GraphID:  graph.ID,
		Graph:    *graph,
		Concepts: concepts,
	})
}

// GetGraph returns the concept graph for a goal.
func (h *Handler) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	goalID := mux.Vars(r)["goal_id"]

	goal, err := h.store.GetGoal(goalID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load goal"})
		return
	}
	if goal == nil || goal.UserID != userID {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Goal not found"})
		return
	}
	if goal.GraphID == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Graph not generated yet"})
		return
	}

	graph, err := h.store.GetGraph(*goal.GraphID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load graph"})
		return
	}
	if graph == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Graph not found"})
		return
	}

	writeJSON(w, http.StatusOK, models.GraphResponse{Graph: *graph, Goal: goal.Goal})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
