// Package progress exposes the read-only dashboard view of a goal: how far
// along the learner is, which concepts are open or blocked, and how engaged
// recent sessions have been.
package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"

	"github.com/learnos/backend/internal/engine"
	"github.com/learnos/backend/internal/goals"
	"github.com/learnos/backend/internal/mastery"
	"github.com/learnos/backend/internal/models"
	"github.com/learnos/backend/internal/sessions"
)

type Handler struct {
	goals    *goals.Store
	mastery  *mastery.Store
	sessions *sessions.Store
	engine   *engine.Engine
}

func NewHandler(goalStore *goals.Store, masteryStore *mastery.Store, sessionStore *sessions.Store) *Handler {
	return &Handler{
		goals:    goalStore,
		mastery:  masteryStore,
		sessions: sessionStore,
		engine:   engine.New(),
	}
}

// GetProgress handles GET /progress?goal_id=...
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	goalID := r.URL.Query().Get("goal_id")
	if goalID == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "goal_id is required"})
		return
	}

	goal, err := h.goals.GetGoal(goalID)
	if err != nil {
		log.Printf("[progress] load goal failed: %v", err)
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

	graph, err := h.goals.GetGraph(*goal.GraphID)
	if err != nil || graph == nil {
		log.Printf("[progress] load graph failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load graph"})
		return
	}

	states, err := h.mastery.List(userID, goalID)
	if err != nil {
		log.Printf("[progress] load mastery failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load mastery"})
		return
	}

	mastered := engine.MasteredSet(states)
	available := h.engine.AvailableConcepts(graph, mastered)
	blocked := h.engine.BlockedConcepts(graph, mastered)

	masteredList := make([]string, 0, len(mastered))
	for name := range mastered {
		masteredList = append(masteredList, name)
	}
	sort.Strings(masteredList)

	resp := models.ProgressResponse{
		Goal:               goal.Goal,
		ProgressPercentage: h.engine.Progress(graph, mastered),
		MasteredConcepts:   masteredList,
		AvailableConcepts:  available,
		BlockedConcepts:    blocked,
		ConceptDetails:     h.conceptDetails(graph, states, mastered, blocked),
		TotalConcepts:      len(graph.Nodes),
	}

	if next, ok := h.engine.SelectNextConcept(graph, available, states); ok {
		resp.NextConcept = next
	}

	resp.EngagementScore = h.engagement(userID, goalID)

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) conceptDetails(graph *models.ConceptGraph, states []models.MasteryState, mastered map[string]bool, blocked map[string][]string) []models.ConceptDetail {
	byName := make(map[string]models.MasteryState, len(states))
	for _, s := range states {
		byName[s.Concept] = s
	}

	names := make([]string, 0, len(graph.Nodes))
	for name := range graph.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make([]models.ConceptDetail, 0, len(names))
	for _, name := range names {
		node := graph.Nodes[name]
		status := models.StatusAvailable
		if mastered[name] {
			status = models.StatusMastered
		} else if _, isBlocked := blocked[name]; isBlocked {
			status = models.StatusBlocked
		}

		state := byName[name]
		details = append(details, models.ConceptDetail{
			Concept:       name,
			Status:        status,
			Confidence:    state.Confidence,
			Attempts:      state.Attempts,
			Difficulty:    node.DifficultyScore,
			EstimatedTime: node.EstimatedTimeMinutes,
		})
	}
	return details
}

// engagement scores the most recent session's interaction history. No
// session yet reads as neutral-healthy rather than zero.
func (h *Handler) engagement(userID int64, goalID string) float64 {
	sess, err := h.sessions.LatestSessionForGoal(userID, goalID)
	if err != nil || sess == nil {
		return 0.5
	}
	events, err := h.sessions.ListInteractions(sess.ID)
	if err != nil || len(events) == 0 {
		return 0.5
	}
	return sessions.EngagementScore(sessions.AnalyzeInteractions(events))
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
