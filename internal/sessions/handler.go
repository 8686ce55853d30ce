package sessions

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/learnos/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// StartSession handles POST /session/start.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.GoalID) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "goal_id is required"})
		return
	}

	resp, err := h.service.StartSession(userID, req.GoalID)
	if err != nil {
		writeServiceError(w, "start session", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Interact handles POST /session/interact.
func (h *Handler) Interact(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.InteractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "session_id is required"})
		return
	}
	if strings.TrimSpace(req.Response) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "response is required"})
		return
	}

	resp, err := h.service.Interact(userID, req)
	if err != nil {
		writeServiceError(w, "interact", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetState handles GET /session/{session_id}/state.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	sessionID := mux.Vars(r)["session_id"]

	resp, err := h.service.State(userID, sessionID)
	if err != nil {
		writeServiceError(w, "session state", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrGoalNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Goal not found"})
	case errors.Is(err, ErrGraphNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Concept graph not found"})
	case errors.Is(err, ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Session not found"})
	case errors.Is(err, ErrSessionCompleted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session already completed"})
	default:
		log.Printf("[sessions] %s failed: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
