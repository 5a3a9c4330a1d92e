package services

import (
	"github.com/medloop/medloop-backend/internal/types"
)

// Spaced-repetition interval ladder, in days. Successful reviews climb
// one rung; a failed review drops back to the first.
var reviewIntervalLadder = []int{1, 3, 7, 14, 30}

func nextReviewInterval(currentDays int, success bool) int {
	if !success {
		return reviewIntervalLadder[0]
	}
	for i, rung := range reviewIntervalLadder {
		if currentDays <= rung {
			if i+1 < len(reviewIntervalLadder) {
				return reviewIntervalLadder[i+1]
			}
			return rung
		}
	}
	return reviewIntervalLadder[len(reviewIntervalLadder)-1]
}

// adaptationSignals summarizes a user's recent standing on one
// objective, as consumed by the mission priority scorer.
type adaptationSignals struct {
	LastScore   float64 // 0..100
	Attempts    int
	DaysOverdue float64
	Complexity  string
}

// missionPriority orders the daily queue. Three weighted components:
// accuracy deficit (weak objectives first), overdue pressure (late
// reviews first) and coverage (barely-attempted objectives first), with
// a small complexity nudge. Output is not normalized; only the relative
// ordering matters.
func missionPriority(sig adaptationSignals) float64 {
	accuracyDeficit := (100 - clamp100(sig.LastScore)) / 100

	overdue := sig.DaysOverdue
	if overdue < 0 {
		overdue = 0
	}
	if overdue > 14 {
		overdue = 14
	}
	overduePressure := overdue / 14

	coverage := 1.0
	if sig.Attempts >= 5 {
		coverage = 0
	} else {
		coverage = 1 - float64(sig.Attempts)/5
	}

	score := accuracyDeficit*0.5 + overduePressure*0.3 + coverage*0.2
	switch sig.Complexity {
	case types.ComplexityAdvanced:
		score += 0.05
	case types.ComplexityIntermediate:
		score += 0.02
	}
	return score
}

func clamp100(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}
