package sessions

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/learnos/backend/internal/models"
)

func responseEvent(concept string, correct bool) models.InteractionEvent {
	return models.InteractionEvent{
		Concept:   concept,
		EventType: "response",
		Correct:   &correct,
	}
}

func TestQuestionHistoryTracksFailedAttempts(t *testing.T) {
	events := []models.InteractionEvent{
		responseEvent("Q-Learning", false),
		responseEvent("Q-Learning", false),
		responseEvent("Value Functions", false), // different concept, ignored
		responseEvent("Q-Learning", true),       // passes don't consume questions
	}

	got := questionHistory(events, "Q-Learning")
	want := []string{"explanation", "why"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestQuestionHistoryCapsAtEscalationOrder(t *testing.T) {
	var events []models.InteractionEvent
	for i := 0; i < 7; i++ {
		events = append(events, responseEvent("Q-Learning", false))
	}

	got := questionHistory(events, "Q-Learning")

	if len(got) != 4 {
		t.Errorf("history should cap at the four escalation stages, got %v", got)
	}
}

func TestQuestionHistoryEmptyForFreshConcept(t *testing.T) {
	if got := questionHistory(nil, "Q-Learning"); len(got) != 0 {
		t.Errorf("fresh concept should have no history, got %v", got)
	}
}

// ── In-memory store fakes for driving the service loop ─────

type fakeGoalStore struct {
	goal   *models.LearningGoal
	graph  *models.ConceptGraph
	status models.GoalStatus
}

func (f *fakeGoalStore) GetGoal(goalID string) (*models.LearningGoal, error) { return f.goal, nil }

func (f *fakeGoalStore) GetGraph(graphID string) (*models.ConceptGraph, error) {
	return f.graph, nil
}

func (f *fakeGoalStore) UpdateGoalStatus(goalID string, status models.GoalStatus) error {
	f.status = status
	return nil
}

type fakeMasteryStore struct {
	states map[string]*models.MasteryState
}

func (f *fakeMasteryStore) List(userID int64, goalID string) ([]models.MasteryState, error) {
	var out []models.MasteryState
	for _, m := range f.states {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMasteryStore) Get(userID int64, goalID, concept string) (*models.MasteryState, error) {
	return f.states[concept], nil
}

func (f *fakeMasteryStore) EnsureExists(userID int64, goalID, concept string) error {
	if _, ok := f.states[concept]; !ok {
		f.states[concept] = models.NewMasteryState(userID, goalID, concept)
	}
	return nil
}

func (f *fakeMasteryStore) ApplyEvaluation(userID int64, goalID, concept string, score, threshold float64) (*models.MasteryState, error) {
	m, ok := f.states[concept]
	if !ok {
		m = models.NewMasteryState(userID, goalID, concept)
		f.states[concept] = m
	}
	m.ApplyEvaluation(score, threshold, time.Now().UTC())
	return m, nil
}

type fakeSessionStore struct {
	session *models.LearningSession
	events  []models.InteractionEvent
}

func (f *fakeSessionStore) CreateSession(userID int64, goalID, graphID, firstConcept string) (*models.LearningSession, error) {
	f.session = &models.LearningSession{
		ID: "sess-1", UserID: userID, GoalID: goalID, GraphID: graphID,
		StartedAt: time.Now(), LastInteraction: time.Now(),
	}
	if firstConcept != "" {
		f.session.CurrentConcept = &firstConcept
	}
	return f.session, nil
}

func (f *fakeSessionStore) GetSession(sessionID string) (*models.LearningSession, error) {
	return f.session, nil
}

func (f *fakeSessionStore) UpdateSession(sessionID string, currentConcept *string, completed bool) error {
	f.session.CurrentConcept = currentConcept
	f.session.Completed = completed
	f.session.LastInteraction = time.Now()
	return nil
}

func (f *fakeSessionStore) AddInteraction(ev *models.InteractionEvent) error {
	ev.CreatedAt = time.Now()
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeSessionStore) ListInteractions(sessionID string) ([]models.InteractionEvent, error) {
	return f.events, nil
}

func rlGraph() *models.ConceptGraph {
	return &models.ConceptGraph{
		ID:   "graph-1",
		Goal: "Learn reinforcement learning",
		Nodes: map[string]models.ConceptNode{
			"Q-Learning": {
				Concept:         "Q-Learning",
				DifficultyScore: 0.5,
				Misconceptions:  []string{"Q-values are probabilities"},
				Examples:        []string{"a robot learning a grid world"},
			},
			"Deep Q-Networks": {
				Concept:         "Deep Q-Networks",
				Prerequisites:   []string{"Q-Learning"},
				DifficultyScore: 0.7,
			},
		},
	}
}

func newTestService(graph *models.ConceptGraph, current string, lastInteraction time.Time) (*Service, *fakeSessionStore, *fakeMasteryStore) {
	gs := &fakeGoalStore{
		goal: &models.LearningGoal{
			ID: "goal-1", UserID: 7, Goal: graph.Goal,
			GraphID: &graph.ID, Status: models.GoalActive,
		},
		graph: graph,
	}
	ms := &fakeMasteryStore{states: map[string]*models.MasteryState{}}
	ss := &fakeSessionStore{session: &models.LearningSession{
		ID: "sess-1", UserID: 7, GoalID: "goal-1", GraphID: graph.ID,
		CurrentConcept: &current, LastInteraction: lastInteraction,
	}}
	return NewService(gs, ms, ss), ss, ms
}

func TestInteractFailedResponseCarriesRegeneratedContent(t *testing.T) {
	svc, _, ms := newTestService(rlGraph(), "Q-Learning", time.Now().Add(-150*time.Second))

	resp, err := svc.Interact(7, models.InteractRequest{SessionID: "sess-1", Response: "idk"})
	if err != nil {
		t.Fatalf("Interact: %v", err)
	}

	if resp.Passed {
		t.Fatal("vague response should not pass")
	}
	if resp.FollowUpQuestion == "" {
		t.Error("failed interaction should carry a follow-up question")
	}
	if resp.NextContent == nil {
		t.Fatal("failed interaction should re-present the concept with regenerated content")
	}
	if resp.NextContent.Concept != "Q-Learning" {
		t.Errorf("regenerated content is for %q, want the current concept", resp.NextContent.Concept)
	}
	// The recorded attempt advances the modality cycle off the first-exposure
	// text presentation.
	if resp.NextContent.Modality != models.ModalityCode {
		t.Errorf("after one attempt content modality = %q, want code", resp.NextContent.Modality)
	}
	if ms.states["Q-Learning"].Attempts != 1 {
		t.Errorf("attempts = %d, want 1", ms.states["Q-Learning"].Attempts)
	}
}

func TestInteractSignalsScopedToCurrentConcept(t *testing.T) {
	svc, ss, _ := newTestService(rlGraph(), "Q-Learning", time.Now().Add(-150*time.Second))

	// A declining, slow history on a different concept. If it leaked into the
	// current concept's signals it would flip the adaptation to
	// switch_modality instead of the pacing intervention.
	slow := 150.0
	correct := []bool{true, true, false, false}
	for i := range correct {
		c := correct[i]
		ss.events = append(ss.events, models.InteractionEvent{
			Concept: "Markov Decision Processes", EventType: "response",
			TimeToRespondSeconds: &slow, Correct: &c,
		})
	}

	resp, err := svc.Interact(7, models.InteractRequest{SessionID: "sess-1", Response: "idk"})
	if err != nil {
		t.Fatalf("Interact: %v", err)
	}

	if resp.AdaptationApplied != "shorten_content" {
		t.Errorf("adaptation = %q, want shorten_content from the current concept's single slow attempt", resp.AdaptationApplied)
	}
}

func TestInteractPassAdvancesToUnlockedConcept(t *testing.T) {
	svc, ss, _ := newTestService(rlGraph(), "Q-Learning", time.Now().Add(-30*time.Second))

	response := "Q-Learning works because the agent updates its Q values from experienced rewards, " +
		"therefore it converges toward the optimal policy without a model of the environment. " +
		"For example, a robot learning to navigate a maze updates its table after each move, " +
		"which means early random exploration gradually becomes directed behavior."

	resp, err := svc.Interact(7, models.InteractRequest{SessionID: "sess-1", Response: response})
	if err != nil {
		t.Fatalf("Interact: %v", err)
	}

	if !resp.Passed || !resp.ConceptMastered {
		t.Fatalf("strong response should master the concept, got passed=%v mastered=%v (quality %.2f)",
			resp.Passed, resp.ConceptMastered, resp.ReasoningQuality)
	}
	if resp.NewConcept != "Deep Q-Networks" {
		t.Errorf("new concept = %q, want the unlocked dependent", resp.NewConcept)
	}
	if resp.NextContent == nil || resp.NextContent.Concept != "Deep Q-Networks" {
		t.Error("advancing should carry content for the new concept")
	}
	if resp.ProgressPercentage != 50 {
		t.Errorf("progress = %.1f, want 50", resp.ProgressPercentage)
	}
	if ss.session.CurrentConcept == nil || *ss.session.CurrentConcept != "Deep Q-Networks" {
		t.Error("session pointer should advance to the new concept")
	}
}

func TestInteractCompletedSessionRejected(t *testing.T) {
	svc, ss, _ := newTestService(rlGraph(), "Q-Learning", time.Now())
	ss.session.Completed = true
	ss.session.CurrentConcept = nil

	_, err := svc.Interact(7, models.InteractRequest{SessionID: "sess-1", Response: "anything at all here"})
	if err == nil || !strings.Contains(err.Error(), "completed") {
		t.Errorf("expected ErrSessionCompleted, got %v", err)
	}
}
