package services

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/medloop/medloop-backend/internal/types"
)

// Normalized assessment types.
const (
	AssessmentComprehension = "COMPREHENSION"
	AssessmentReasoning     = "REASONING"
	AssessmentApplication   = "APPLICATION"
)

// Assessment is the normalized in-memory view of one graded attempt,
// merged from validation and scenario responses. Score is always on the
// 0..100 scale. Difficulty, ConfidenceLevel and CalibrationDelta are nil
// when the source row did not carry them; evaluators exclude such rows
// from the relevant denominator rather than failing.
type Assessment struct {
	ID               uuid.UUID
	Score            float64
	Type             string
	Difficulty       *float64
	ConfidenceLevel  *int
	CalibrationDelta *float64
	RespondedAt      time.Time
}

// CriterionCheck is one criterion's verdict: a met flag, a 0..1 progress
// fraction, and a display string embedding the relevant counts.
type CriterionCheck struct {
	Met      bool    `json:"met"`
	Progress float64 `json:"progress"`
	Details  string  `json:"details"`
}

// MasteryCriteria holds the five checks in their fixed evaluation order.
type MasteryCriteria struct {
	ConsecutiveHighScores CriterionCheck `json:"consecutive_high_scores"`
	AssessmentTypeVariety CriterionCheck `json:"assessment_type_variety"`
	DifficultyMatch       CriterionCheck `json:"difficulty_match"`
	CalibrationAccuracy   CriterionCheck `json:"calibration_accuracy"`
	TimeSpacing           CriterionCheck `json:"time_spacing"`
}

func (c MasteryCriteria) ordered() [5]CriterionCheck {
	return [5]CriterionCheck{
		c.ConsecutiveHighScores,
		c.AssessmentTypeVariety,
		c.DifficultyMatch,
		c.CalibrationAccuracy,
		c.TimeSpacing,
	}
}

// MasteryVerificationResult is the ephemeral outcome of one evaluation.
type MasteryVerificationResult struct {
	Status          string          `json:"status"`
	Criteria        MasteryCriteria `json:"criteria"`
	OverallProgress float64         `json:"overall_progress"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	NextSteps       []string        `json:"next_steps"`
}

// MasteryThresholds is the scoring constants table. Defaults mirror the
// production values; tests and deployments can inject variants, and a
// YAML file can override individual fields.
type MasteryThresholds struct {
	HighScore               float64 `yaml:"high_score"`
	ConsecutiveNeeded       int     `yaml:"consecutive_needed"`
	DistinctTypesNeeded     int     `yaml:"distinct_types_needed"`
	DifficultyMatchesNeeded int     `yaml:"difficulty_matches_needed"`
	DifficultyProgressDenom int     `yaml:"difficulty_progress_denom"`
	CalibrationTolerance    float64 `yaml:"calibration_tolerance"`
	CalibrationFraction     float64 `yaml:"calibration_fraction"`
	SpacingDays             int     `yaml:"spacing_days"`
	MinSpacedAssessments    int     `yaml:"min_spaced_assessments"`
	LookbackDays            int     `yaml:"lookback_days"`
	MaxAssessments          int     `yaml:"max_assessments"`
}

func DefaultMasteryThresholds() MasteryThresholds {
	return MasteryThresholds{
		HighScore:               80,
		ConsecutiveNeeded:       3,
		DistinctTypesNeeded:     2,
		DifficultyMatchesNeeded: 1,
		// Progress divides by 3 while met triggers at 1. Intentional:
		// the fraction keeps moving after the gate is passed.
		DifficultyProgressDenom: 3,
		CalibrationTolerance:    15,
		CalibrationFraction:     0.66,
		SpacingDays:             2,
		MinSpacedAssessments:    3,
		LookbackDays:            30,
		MaxAssessments:          50,
	}
}

// LoadMasteryThresholds overlays a YAML file onto the defaults. A
// missing path returns the defaults untouched.
func LoadMasteryThresholds(path string) (MasteryThresholds, error) {
	th := DefaultMasteryThresholds()
	if path == "" {
		return th, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return th, nil
		}
		return th, fmt.Errorf("read mastery thresholds: %w", err)
	}
	if err := yaml.Unmarshal(raw, &th); err != nil {
		return th, fmt.Errorf("parse mastery thresholds: %w", err)
	}
	return th, nil
}

// difficultyBandFor maps objective complexity to an inclusive difficulty
// range on the common 0..100 scale.
func difficultyBandFor(complexity string) (lo, hi float64) {
	switch complexity {
	case types.ComplexityAdvanced:
		return 71, 100
	case types.ComplexityIntermediate:
		return 41, 70
	default:
		return 0, 40
	}
}

func sortNewestFirst(assessments []Assessment) []Assessment {
	sorted := make([]Assessment, len(assessments))
	copy(sorted, assessments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RespondedAt.After(sorted[j].RespondedAt)
	})
	return sorted
}

// checkConsecutiveHighScores counts a strict prefix run of high scores
// starting from the most recent assessment. Not a sliding window: the
// run stops at the first score below the threshold.
func checkConsecutiveHighScores(assessments []Assessment, th MasteryThresholds) CriterionCheck {
	run := 0
	for _, a := range sortNewestFirst(assessments) {
		if a.Score < th.HighScore {
			break
		}
		run++
	}
	return CriterionCheck{
		Met:      run >= th.ConsecutiveNeeded,
		Progress: clampFraction(float64(run) / float64(th.ConsecutiveNeeded)),
		Details:  fmt.Sprintf("%d consecutive scores of %.0f or above; %d needed", run, th.HighScore, th.ConsecutiveNeeded),
	}
}

func checkAssessmentTypeVariety(assessments []Assessment, th MasteryThresholds) CriterionCheck {
	seen := map[string]struct{}{}
	for _, a := range assessments {
		seen[a.Type] = struct{}{}
	}
	distinct := len(seen)
	return CriterionCheck{
		Met:      distinct >= th.DistinctTypesNeeded,
		Progress: clampFraction(float64(distinct) / float64(th.DistinctTypesNeeded)),
		Details:  fmt.Sprintf("%d distinct assessment types seen; %d needed", distinct, th.DistinctTypesNeeded),
	}
}

func checkDifficultyMatch(assessments []Assessment, complexity string, th MasteryThresholds) CriterionCheck {
	lo, hi := difficultyBandFor(complexity)
	matches := 0
	for _, a := range assessments {
		if a.Difficulty == nil {
			continue
		}
		if a.Score >= th.HighScore && *a.Difficulty >= lo && *a.Difficulty <= hi {
			matches++
		}
	}
	return CriterionCheck{
		Met:      matches >= th.DifficultyMatchesNeeded,
		Progress: clampFraction(float64(matches) / float64(th.DifficultyProgressDenom)),
		Details:  fmt.Sprintf("%d high scores in the %.0f-%.0f difficulty band; %d needed", matches, lo, hi, th.DifficultyMatchesNeeded),
	}
}

// checkCalibrationAccuracy looks only at assessments that carry a
// calibration delta. Progress is the literal well-calibrated fraction,
// not normalized against the met threshold.
func checkCalibrationAccuracy(assessments []Assessment, th MasteryThresholds) CriterionCheck {
	rated := 0
	accurate := 0
	for _, a := range assessments {
		if a.CalibrationDelta == nil {
			continue
		}
		rated++
		delta := *a.CalibrationDelta
		if delta < 0 {
			delta = -delta
		}
		if delta <= th.CalibrationTolerance {
			accurate++
		}
	}
	if rated == 0 {
		return CriterionCheck{
			Met:      false,
			Progress: 0,
			Details:  "no confidence-rated assessments yet",
		}
	}
	fraction := float64(accurate) / float64(rated)
	return CriterionCheck{
		Met:      fraction >= th.CalibrationFraction,
		Progress: clampFraction(fraction),
		Details:  fmt.Sprintf("%d of %d confidence ratings within %.0f points of the actual score; %.0f%% needed", accurate, rated, th.CalibrationTolerance, th.CalibrationFraction*100),
	}
}

// checkTimeSpacing compares the calendar-day span between the oldest
// and newest assessments. Fewer rows than MinSpacedAssessments can
// never satisfy it.
func checkTimeSpacing(assessments []Assessment, th MasteryThresholds) CriterionCheck {
	if len(assessments) < th.MinSpacedAssessments {
		return CriterionCheck{
			Met:      false,
			Progress: 0,
			Details:  fmt.Sprintf("%d assessments recorded; at least %d needed to measure spacing", len(assessments), th.MinSpacedAssessments),
		}
	}
	sorted := sortNewestFirst(assessments)
	newest := sorted[0].RespondedAt
	oldest := sorted[len(sorted)-1].RespondedAt
	span := calendarDaySpan(oldest, newest)
	return CriterionCheck{
		Met:      span >= th.SpacingDays,
		Progress: clampFraction(float64(span) / float64(th.SpacingDays)),
		Details:  fmt.Sprintf("assessments span %d calendar days; %d needed", span, th.SpacingDays),
	}
}

// calendarDaySpan is the difference in calendar days (UTC), not elapsed
// hours: 23:00 one day to 01:00 the next counts as 1.
func calendarDaySpan(oldest, newest time.Time) int {
	o := oldest.UTC().Truncate(24 * time.Hour)
	n := newest.UTC().Truncate(24 * time.Hour)
	return int(n.Sub(o).Hours() / 24)
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// evaluateMasteryCriteria runs the five evaluators over a normalized
// assessment list. None of them can fail.
func evaluateMasteryCriteria(assessments []Assessment, complexity string, th MasteryThresholds) MasteryCriteria {
	return MasteryCriteria{
		ConsecutiveHighScores: checkConsecutiveHighScores(assessments, th),
		AssessmentTypeVariety: checkAssessmentTypeVariety(assessments, th),
		DifficultyMatch:       checkDifficultyMatch(assessments, complexity, th),
		CalibrationAccuracy:   checkCalibrationAccuracy(assessments, th),
		TimeSpacing:           checkTimeSpacing(assessments, th),
	}
}

// aggregateMastery combines the five checks into the overall verdict.
// Overall progress is the plain arithmetic mean of the five clamped
// progress fractions, with equal weighting. VERIFIED iff every check is
// met; NOT_STARTED iff every progress fraction is exactly zero.
func aggregateMastery(criteria MasteryCriteria, now time.Time) MasteryVerificationResult {
	allMet := true
	allZero := true
	sum := 0.0
	for _, check := range criteria.ordered() {
		p := clampFraction(check.Progress)
		sum += p
		if !check.Met {
			allMet = false
		}
		if p != 0 {
			allZero = false
		}
	}

	result := MasteryVerificationResult{
		Criteria:        criteria,
		OverallProgress: sum / 5,
	}
	switch {
	case allMet:
		result.Status = types.MasteryVerified
		verifiedAt := now
		result.VerifiedAt = &verifiedAt
	case allZero:
		result.Status = types.MasteryNotStarted
	default:
		result.Status = types.MasteryInProgress
	}
	result.NextSteps = masteryNextSteps(result.Status, criteria)
	return result
}

var verifiedNextSteps = []string{
	"Mastery verified for this objective.",
	"Keep it fresh with periodic review missions.",
	"Move on to a related objective to broaden coverage.",
}

const (
	varietyGuidance     = "Mix in different kinds of validation challenges, including clinical reasoning scenarios."
	calibrationGuidance = "Rate your confidence before submitting answers so calibration can be measured."
	fallbackGuidance    = "Keep working through validation challenges to build mastery."
)

// masteryNextSteps turns unmet criteria into display guidance. Criteria
// 1, 3 and 5 surface their own details string; 2 and 4 surface a fixed
// generic message instead, matching the shipped behavior.
func masteryNextSteps(status string, criteria MasteryCriteria) []string {
	if status == types.MasteryVerified {
		return verifiedNextSteps
	}

	var steps []string
	if !criteria.ConsecutiveHighScores.Met {
		steps = append(steps, criteria.ConsecutiveHighScores.Details)
	}
	if !criteria.AssessmentTypeVariety.Met {
		steps = append(steps, varietyGuidance)
	}
	if !criteria.DifficultyMatch.Met {
		steps = append(steps, criteria.DifficultyMatch.Details)
	}
	if !criteria.CalibrationAccuracy.Met {
		steps = append(steps, calibrationGuidance)
	}
	if !criteria.TimeSpacing.Met {
		steps = append(steps, criteria.TimeSpacing.Details)
	}
	if len(steps) == 0 {
		steps = append(steps, fallbackGuidance)
	}
	return steps
}
