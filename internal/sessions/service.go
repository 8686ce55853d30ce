package sessions

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/learnos/backend/internal/engine"
	"github.com/learnos/backend/internal/models"
)

var (
	ErrGoalNotFound     = errors.New("goal not found")
	ErrGraphNotFound    = errors.New("concept graph not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
)

// GoalStore is the slice of the goals package the session loop needs.
type GoalStore interface {
	GetGoal(goalID string) (*models.LearningGoal, error)
	GetGraph(graphID string) (*models.ConceptGraph, error)
	UpdateGoalStatus(goalID string, status models.GoalStatus) error
}

// MasteryStore is the slice of the mastery package the session loop needs.
type MasteryStore interface {
	List(userID int64, goalID string) ([]models.MasteryState, error)
	Get(userID int64, goalID, concept string) (*models.MasteryState, error)
	EnsureExists(userID int64, goalID, concept string) error
	ApplyEvaluation(userID int64, goalID, concept string, score, threshold float64) (*models.MasteryState, error)
}

// SessionStore is the persistence surface for sessions and their events.
type SessionStore interface {
	CreateSession(userID int64, goalID, graphID, firstConcept string) (*models.LearningSession, error)
	GetSession(sessionID string) (*models.LearningSession, error)
	UpdateSession(sessionID string, currentConcept *string, completed bool) error
	AddInteraction(ev *models.InteractionEvent) error
	ListInteractions(sessionID string) ([]models.InteractionEvent, error)
}

// Service runs the session progression loop: pick a concept the learner is
// ready for, present it, evaluate the response, update mastery, repeat. A
// concept is only ever presented after its prerequisites check out against
// the current mastery snapshot.
type Service struct {
	goals        GoalStore
	mastery      MasteryStore
	sessions     SessionStore
	engine       *engine.Engine
	evaluator    *Evaluator
	orchestrator *Orchestrator
}

func NewService(goalStore GoalStore, masteryStore MasteryStore, sessionStore SessionStore) *Service {
	return &Service{
		goals:        goalStore,
		mastery:      masteryStore,
		sessions:     sessionStore,
		engine:       engine.New(),
		evaluator:    NewEvaluator(),
		orchestrator: NewOrchestrator(),
	}
}

// StartSession begins (or resumes) learning toward a goal. If every concept
// is already mastered it reports completion instead of creating a session.
func (s *Service) StartSession(userID int64, goalID string) (*models.StartSessionResponse, error) {
	goal, err := s.goals.GetGoal(goalID)
	if err != nil {
		return nil, err
	}
	if goal == nil || goal.UserID != userID {
		return nil, ErrGoalNotFound
	}
	if goal.GraphID == nil {
		return nil, ErrGraphNotFound
	}

	graph, err := s.goals.GetGraph(*goal.GraphID)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, ErrGraphNotFound
	}

	states, err := s.mastery.List(userID, goalID)
	if err != nil {
		return nil, err
	}
	mastered := engine.MasteredSet(states)
	progress := s.engine.Progress(graph, mastered)

	available := s.engine.AvailableConcepts(graph, mastered)
	first, ok := s.engine.SelectNextConcept(graph, available, states)
	if !ok {
		return &models.StartSessionResponse{
			Completed: true,
			Progress:  progress,
			Message:   "All concepts mastered. Goal complete!",
		}, nil
	}

	if err := s.guardPrerequisites(graph, first, mastered); err != nil {
		return nil, err
	}
	if err := s.mastery.EnsureExists(userID, goalID, first); err != nil {
		return nil, err
	}

	sess, err := s.sessions.CreateSession(userID, goalID, graph.ID, first)
	if err != nil {
		return nil, err
	}

	content, err := s.contentFor(graph, userID, goalID, first, Signals{})
	if err != nil {
		return nil, err
	}

	return &models.StartSessionResponse{
		SessionID:    sess.ID,
		FirstConcept: first,
		Content:      content,
		Progress:     progress,
	}, nil
}

// Interact evaluates one learner response. A passing response masters the
// current concept and advances the session to the next available one; a
// failing response keeps the concept and returns a Socratic follow-up plus
// regenerated content for the retry, with an attention adaptation when the
// signals call for one.
func (s *Service) Interact(userID int64, req models.InteractRequest) (*models.InteractResponse, error) {
	sess, err := s.sessions.GetSession(req.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	if sess.Completed || sess.CurrentConcept == nil {
		return nil, ErrSessionCompleted
	}
	concept := *sess.CurrentConcept

	graph, err := s.goals.GetGraph(sess.GraphID)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, ErrGraphNotFound
	}

	events, err := s.sessions.ListInteractions(sess.ID)
	if err != nil {
		return nil, err
	}

	eval := s.evaluator.Evaluate(concept, req.Response, questionHistory(events, concept))

	responseTime := time.Since(sess.LastInteraction).Seconds()
	response := req.Response
	if err := s.sessions.AddInteraction(&models.InteractionEvent{
		SessionID:            sess.ID,
		Concept:              concept,
		EventType:            "response",
		Response:             &response,
		TimeToRespondSeconds: &responseTime,
		Correct:              &eval.Passed,
		Metadata:             map[string]string{"reasoning_quality": fmt.Sprintf("%.2f", eval.ReasoningQuality)},
	}); err != nil {
		return nil, err
	}

	if _, err := s.mastery.ApplyEvaluation(userID, sess.GoalID, concept, eval.ReasoningQuality, s.evaluator.PassThreshold); err != nil {
		return nil, err
	}

	states, err := s.mastery.List(userID, sess.GoalID)
	if err != nil {
		return nil, err
	}
	mastered := engine.MasteredSet(states)
	progress := s.engine.Progress(graph, mastered)

	resp := &models.InteractResponse{
		SessionID:          sess.ID,
		CurrentConcept:     concept,
		Passed:             eval.Passed,
		ReasoningQuality:   eval.ReasoningQuality,
		Feedback:           eval.Feedback,
		EvaluationDetails:  eval.Breakdown,
		ProgressPercentage: progress,
	}

	if !eval.Passed {
		resp.FollowUpQuestion = eval.FollowUpQuestion
		signals := AnalyzeInteractions(append(conceptEvents(events, concept), models.InteractionEvent{
			Concept: concept, Correct: &eval.Passed, TimeToRespondSeconds: &responseTime,
		}))
		if adaptation := SelectAdaptation(signals); adaptation != nil {
			resp.AdaptationApplied = adaptation.Action
		}
		// Always re-present the concept: the attempt just recorded moves the
		// orchestrator's modality cycle and misconception walk forward.
		content, err := s.contentFor(graph, userID, sess.GoalID, concept, signals)
		if err != nil {
			return nil, err
		}
		resp.NextContent = content
		if err := s.sessions.UpdateSession(sess.ID, sess.CurrentConcept, false); err != nil {
			return nil, err
		}
		return resp, nil
	}

	resp.ConceptMastered = true

	// Recompute against the fresh snapshot: mastering this concept may have
	// unlocked dependents.
	available := s.engine.AvailableConcepts(graph, mastered)
	next, ok := s.engine.SelectNextConcept(graph, available, states)
	if !ok {
		if err := s.sessions.UpdateSession(sess.ID, nil, true); err != nil {
			return nil, err
		}
		if err := s.goals.UpdateGoalStatus(sess.GoalID, models.GoalCompleted); err != nil {
			return nil, err
		}
		resp.Completed = true
		resp.Message = "Congratulations! You've mastered all concepts."
		return resp, nil
	}

	if err := s.guardPrerequisites(graph, next, mastered); err != nil {
		return nil, err
	}
	if err := s.mastery.EnsureExists(userID, sess.GoalID, next); err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateSession(sess.ID, &next, false); err != nil {
		return nil, err
	}

	content, err := s.contentFor(graph, userID, sess.GoalID, next, AnalyzeInteractions(conceptEvents(events, next)))
	if err != nil {
		return nil, err
	}
	resp.NewConcept = next
	resp.NextContent = content
	return resp, nil
}

// State reports where a session stands without mutating anything.
func (s *Service) State(userID int64, sessionID string) (*models.SessionStateResponse, error) {
	sess, err := s.sessions.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != userID {
		return nil, ErrSessionNotFound
	}

	graph, err := s.goals.GetGraph(sess.GraphID)
	if err != nil {
		return nil, err
	}
	if graph == nil {
		return nil, ErrGraphNotFound
	}

	states, err := s.mastery.List(userID, sess.GoalID)
	if err != nil {
		return nil, err
	}
	mastered := engine.MasteredSet(states)

	masteredList := make([]string, 0, len(mastered))
	for name := range mastered {
		masteredList = append(masteredList, name)
	}
	sort.Strings(masteredList)

	resp := &models.SessionStateResponse{
		SessionID:          sess.ID,
		Completed:          sess.Completed,
		ProgressPercentage: s.engine.Progress(graph, mastered),
		MasteredConcepts:   masteredList,
	}

	if sess.CurrentConcept != nil {
		resp.CurrentConcept = *sess.CurrentConcept
		events, err := s.sessions.ListInteractions(sess.ID)
		if err != nil {
			return nil, err
		}
		content, err := s.contentFor(graph, userID, sess.GoalID, *sess.CurrentConcept, AnalyzeInteractions(conceptEvents(events, *sess.CurrentConcept)))
		if err != nil {
			return nil, err
		}
		resp.NextContent = content
	}
	return resp, nil
}

// guardPrerequisites rejects any attempt to present a concept whose
// prerequisites are not all mastered. The engine's selection already
// respects this; the guard catches a desynced mastery snapshot before it
// reaches the learner.
func (s *Service) guardPrerequisites(graph *models.ConceptGraph, concept string, mastered map[string]bool) error {
	met, missing := s.engine.ValidatePrerequisites(graph, concept, mastered)
	if !met {
		return fmt.Errorf("concept %q selected with unmet prerequisites %v", concept, missing)
	}
	return nil
}

func (s *Service) contentFor(graph *models.ConceptGraph, userID int64, goalID, concept string, signals Signals) (*models.LearningContent, error) {
	node, ok := s.engine.ConceptMetadata(graph, concept)
	if !ok {
		return nil, fmt.Errorf("concept %q not in graph", concept)
	}
	state, err := s.mastery.Get(userID, goalID, concept)
	if err != nil {
		return nil, err
	}
	content := s.orchestrator.GenerateContent(node, state, signals)
	if content.Context == nil {
		content.Context = map[string]string{}
	}
	content.Context["depth"] = s.orchestrator.DepthLevel(state)
	return &content, nil
}

// conceptEvents filters a session's history down to one concept's events, so
// attention signals for a concept don't bleed in from earlier concepts.
func conceptEvents(events []models.InteractionEvent, concept string) []models.InteractionEvent {
	var out []models.InteractionEvent
	for _, ev := range events {
		if ev.Concept == concept {
			out = append(out, ev)
		}
	}
	return out
}

// questionHistory reconstructs which Socratic question types have already
// been asked for a concept from its failed attempts, in the order the
// evaluator escalates them.
func questionHistory(events []models.InteractionEvent, concept string) []string {
	failed := 0
	for _, ev := range events {
		if ev.Concept == concept && ev.EventType == "response" && ev.Correct != nil && !*ev.Correct {
			failed++
		}
	}

	order := []string{"explanation", "why", "what_if", "transfer"}
	if failed > len(order) {
		failed = len(order)
	}
	return order[:failed]
}
