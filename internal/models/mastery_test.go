package models

import (
	"testing"
	"time"
)

func TestApplyEvaluationFirstAttempt(t *testing.T) {
	now := time.Now()
	m := NewMasteryState(1, "goal-1", "Z")

	m.ApplyEvaluation(0.5, 0.7, now)

	if m.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", m.Attempts)
	}
	if m.Confidence != 0.5 {
		t.Errorf("confidence = %f, want 0.5", m.Confidence)
	}
	if m.Mastered {
		t.Error("0.5 < 0.7 should not master")
	}
	if m.LastAttempted == nil || !m.LastAttempted.Equal(now) {
		t.Errorf("last_attempted = %v, want %v", m.LastAttempted, now)
	}
	if m.MasteredAt != nil {
		t.Error("mastered_at should be unset before mastery")
	}
}

func TestApplyEvaluationMasters(t *testing.T) {
	m := NewMasteryState(1, "goal-1", "Z")
	m.ApplyEvaluation(0.5, 0.7, time.Now())

	masteredAt := time.Now().Add(time.Minute)
	m.ApplyEvaluation(0.75, 0.7, masteredAt)

	if m.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", m.Attempts)
	}
	if m.Confidence != 0.75 {
		t.Errorf("confidence = %f, want 0.75 (overwrite, not accumulate)", m.Confidence)
	}
	if !m.Mastered {
		t.Error("0.75 >= 0.7 should master")
	}
	if m.MasteredAt == nil || !m.MasteredAt.Equal(masteredAt) {
		t.Errorf("mastered_at = %v, want %v", m.MasteredAt, masteredAt)
	}
}

func TestApplyEvaluationMasteryIrreversible(t *testing.T) {
	m := NewMasteryState(1, "goal-1", "Z")
	masteredAt := time.Now()
	m.ApplyEvaluation(0.9, 0.7, masteredAt)

	// A later poor score keeps the mastered flag and original timestamp.
	m.ApplyEvaluation(0.1, 0.7, masteredAt.Add(time.Hour))

	if !m.Mastered {
		t.Error("mastered state reverted")
	}
	if !m.MasteredAt.Equal(masteredAt) {
		t.Errorf("mastered_at moved to %v, want %v", m.MasteredAt, masteredAt)
	}
	if m.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", m.Attempts)
	}
	if m.Confidence != 0.1 {
		t.Errorf("confidence = %f, want latest score 0.1", m.Confidence)
	}
}

func TestApplyEvaluationExactThreshold(t *testing.T) {
	m := NewMasteryState(1, "goal-1", "Z")
	m.ApplyEvaluation(0.7, 0.7, time.Now())
	if !m.Mastered {
		t.Error("score equal to threshold should master")
	}
}
