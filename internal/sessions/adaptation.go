package sessions

import "github.com/learnos/backend/internal/models"

// Attention thresholds. Response times above slowResponseSeconds suggest
// disengagement or confusion; below fastResponseSeconds with a wrong answer,
// skimming.
const (
	slowResponseSeconds = 120.0
	fastResponseSeconds = 10.0
	confusionStreak     = 3
	skipRateLimit       = 0.3
)

// Signals summarizes recent interaction behavior for one session.
type Signals struct {
	AvgResponseSeconds   float64
	Accuracy             float64
	ConsecutiveIncorrect int
	SkipRate             float64
	EngagementTrend      string // "improving", "declining", "stable"
	PrefersVisual        bool
	PrefersCode          bool
}

// Adaptation names a content intervention plus the reason it fired.
type Adaptation struct {
	Action string `json:"action"`
	Reason string `json:"reason"`
}

// AnalyzeInteractions derives attention signals from a session's event
// history, most recent last.
func AnalyzeInteractions(events []models.InteractionEvent) Signals {
	var sig Signals
	if len(events) == 0 {
		sig.EngagementTrend = "stable"
		return sig
	}

	var totalTime float64
	var timed int
	var correct, graded int
	for _, ev := range events {
		if ev.TimeToRespondSeconds != nil {
			totalTime += *ev.TimeToRespondSeconds
			timed++
		}
		if ev.Correct != nil {
			graded++
			if *ev.Correct {
				correct++
			}
		}
	}
	if timed > 0 {
		sig.AvgResponseSeconds = totalTime / float64(timed)
	}
	if graded > 0 {
		sig.Accuracy = float64(correct) / float64(graded)
	}

	// Consecutive incorrect within the last five graded events.
	recent := events
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].Correct == nil {
			continue
		}
		if *recent[i].Correct {
			break
		}
		sig.ConsecutiveIncorrect++
	}

	// Skip rate: fast wrong answers over the last ten events.
	window := events
	if len(window) > 10 {
		window = window[len(window)-10:]
	}
	skips := 0
	for _, ev := range window {
		if ev.TimeToRespondSeconds != nil && *ev.TimeToRespondSeconds < fastResponseSeconds &&
			ev.Correct != nil && !*ev.Correct {
			skips++
		}
	}
	sig.SkipRate = float64(skips) / float64(len(window))

	sig.EngagementTrend = engagementTrend(events)
	return sig
}

// engagementTrend compares accuracy in the first and second half of the
// history.
func engagementTrend(events []models.InteractionEvent) string {
	if len(events) < 4 {
		return "stable"
	}

	half := len(events) / 2
	first := accuracyOf(events[:half])
	second := accuracyOf(events[half:])

	switch {
	case second > first+0.15:
		return "improving"
	case second < first-0.15:
		return "declining"
	default:
		return "stable"
	}
}

func accuracyOf(events []models.InteractionEvent) float64 {
	correct, graded := 0, 0
	for _, ev := range events {
		if ev.Correct != nil {
			graded++
			if *ev.Correct {
				correct++
			}
		}
	}
	if graded == 0 {
		return 0
	}
	return float64(correct) / float64(graded)
}

// SelectAdaptation picks at most one intervention per interaction, in
// priority order: disengagement first, then confusion, then pacing.
func SelectAdaptation(sig Signals) *Adaptation {
	switch {
	case sig.AvgResponseSeconds > slowResponseSeconds && sig.EngagementTrend == "declining":
		return &Adaptation{
			Action: "switch_modality",
			Reason: "Slow responses with declining accuracy suggest the current presentation isn't landing.",
		}
	case sig.SkipRate > skipRateLimit:
		return &Adaptation{
			Action: "force_retrieval",
			Reason: "Fast incorrect answers suggest skimming; a retrieval prompt re-engages active recall.",
		}
	case sig.AvgResponseSeconds > slowResponseSeconds:
		return &Adaptation{
			Action: "shorten_content",
			Reason: "Long response times suggest cognitive overload.",
		}
	case sig.ConsecutiveIncorrect >= confusionStreak:
		return &Adaptation{
			Action: "introduce_analogy",
			Reason: "Repeated incorrect answers suggest the abstract framing isn't working.",
		}
	case sig.Accuracy > 0 && sig.Accuracy < 0.4:
		return &Adaptation{
			Action: "add_scaffolding",
			Reason: "Low overall accuracy suggests missing intermediate steps.",
		}
	default:
		return nil
	}
}

// EngagementScore blends the signals into a single [0, 1] health number for
// progress reporting.
func EngagementScore(sig Signals) float64 {
	pace := 1.0
	if sig.AvgResponseSeconds > slowResponseSeconds {
		pace = 0.3
	} else if sig.AvgResponseSeconds > slowResponseSeconds/2 {
		pace = 0.7
	}

	trend := 0.5
	switch sig.EngagementTrend {
	case "improving":
		trend = 1.0
	case "declining":
		trend = 0.2
	}

	focus := 1.0 - sig.SkipRate
	if focus < 0 {
		focus = 0
	}

	return pace*0.2 + sig.Accuracy*0.4 + trend*0.2 + focus*0.2
}
