package services

import (
	"testing"

	"github.com/medloop/medloop-backend/internal/types"
)

func TestNextReviewInterval(t *testing.T) {
	cases := []struct {
		name    string
		current int
		success bool
		want    int
	}{
		{name: "first_success_climbs", current: 1, success: true, want: 3},
		{name: "mid_ladder_climbs", current: 7, success: true, want: 14},
		{name: "between_rungs_rounds_up", current: 5, success: true, want: 14},
		{name: "top_rung_stays", current: 30, success: true, want: 30},
		{name: "beyond_ladder_stays", current: 45, success: true, want: 30},
		{name: "failure_resets", current: 14, success: false, want: 1},
		{name: "failure_from_top_resets", current: 30, success: false, want: 1},
		{name: "zero_current_climbs_to_three", current: 0, success: true, want: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextReviewInterval(tc.current, tc.success)
			if got != tc.want {
				t.Fatalf("nextReviewInterval(%d, %v) = %d, want %d", tc.current, tc.success, got, tc.want)
			}
		})
	}
}

func TestMissionPriorityOrdering(t *testing.T) {
	weak := missionPriority(adaptationSignals{LastScore: 40, Attempts: 3, DaysOverdue: 2})
	strong := missionPriority(adaptationSignals{LastScore: 95, Attempts: 3, DaysOverdue: 2})
	if weak <= strong {
		t.Fatalf("weak objective (%v) should outrank strong one (%v)", weak, strong)
	}

	overdue := missionPriority(adaptationSignals{LastScore: 70, Attempts: 3, DaysOverdue: 10})
	onTime := missionPriority(adaptationSignals{LastScore: 70, Attempts: 3, DaysOverdue: 0})
	if overdue <= onTime {
		t.Fatalf("overdue objective (%v) should outrank on-time one (%v)", overdue, onTime)
	}

	fresh := missionPriority(adaptationSignals{LastScore: 70, Attempts: 0, DaysOverdue: 0})
	wellCovered := missionPriority(adaptationSignals{LastScore: 70, Attempts: 8, DaysOverdue: 0})
	if fresh <= wellCovered {
		t.Fatalf("barely-attempted objective (%v) should outrank well-covered one (%v)", fresh, wellCovered)
	}
}

func TestMissionPriorityOverdueCapped(t *testing.T) {
	atCap := missionPriority(adaptationSignals{LastScore: 70, Attempts: 3, DaysOverdue: 14})
	wayPast := missionPriority(adaptationSignals{LastScore: 70, Attempts: 3, DaysOverdue: 60})
	if atCap != wayPast {
		t.Fatalf("overdue pressure should saturate at 14 days: %v vs %v", atCap, wayPast)
	}
}

func TestMissionPriorityComplexityNudge(t *testing.T) {
	sig := adaptationSignals{LastScore: 70, Attempts: 3, DaysOverdue: 0}

	basic := missionPriority(sig)
	sig.Complexity = types.ComplexityIntermediate
	intermediate := missionPriority(sig)
	sig.Complexity = types.ComplexityAdvanced
	advanced := missionPriority(sig)

	if !(advanced > intermediate && intermediate > basic) {
		t.Fatalf("complexity nudge out of order: basic=%v intermediate=%v advanced=%v", basic, intermediate, advanced)
	}
}

func TestMissionPriorityClampsScore(t *testing.T) {
	negative := missionPriority(adaptationSignals{LastScore: -20, Attempts: 3})
	zero := missionPriority(adaptationSignals{LastScore: 0, Attempts: 3})
	if negative != zero {
		t.Fatalf("scores below zero should clamp: %v vs %v", negative, zero)
	}

	over := missionPriority(adaptationSignals{LastScore: 130, Attempts: 3})
	hundred := missionPriority(adaptationSignals{LastScore: 100, Attempts: 3})
	if over != hundred {
		t.Fatalf("scores above 100 should clamp: %v vs %v", over, hundred)
	}
}
