package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/medloop/medloop-backend/internal/clients/redis"
	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/repos"
	"github.com/medloop/medloop-backend/internal/types"
)

const (
	dashboardCacheTTL = 5 * time.Minute
	benchmarkCacheTTL = 15 * time.Minute
	analyticsWindow   = 30 // days
)

type DashboardSummary struct {
	UserID             uuid.UUID `json:"user_id"`
	WindowDays         int       `json:"window_days"`
	ValidationCount    int       `json:"validation_count"`
	ScenarioCount      int       `json:"scenario_count"`
	MeanScore          float64   `json:"mean_score"`
	VerifiedObjectives int64     `json:"verified_objectives"`
	StudyStreakDays    int       `json:"study_streak_days"`
}

type PeerBenchmark struct {
	Topic      string  `json:"topic"`
	UserMean   float64 `json:"user_mean"`
	CohortMean float64 `json:"cohort_mean"`
	Percentile float64 `json:"percentile"`
	CohortSize int     `json:"cohort_size"`
}

type AnalyticsService interface {
	GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error)
	GetPeerBenchmark(ctx context.Context, userID uuid.UUID, topic string) (*PeerBenchmark, error)
	InvalidateUser(ctx context.Context, userID uuid.UUID)
}

type analyticsService struct {
	db                      *gorm.DB
	log                     *logger.Logger
	cache                   redisclient.Cache
	validationResponseRepo  repos.ValidationResponseRepo
	scenarioResponseRepo    repos.ScenarioResponseRepo
	masteryVerificationRepo repos.MasteryVerificationRepo
	userEventRepo           repos.UserEventRepo
	now                     func() time.Time
}

func NewAnalyticsService(
	db *gorm.DB,
	log *logger.Logger,
	cache redisclient.Cache,
	validationResponseRepo repos.ValidationResponseRepo,
	scenarioResponseRepo repos.ScenarioResponseRepo,
	masteryVerificationRepo repos.MasteryVerificationRepo,
	userEventRepo repos.UserEventRepo,
) AnalyticsService {
	serviceLog := log.With("service", "AnalyticsService")
	return &analyticsService{
		db:                      db,
		log:                     serviceLog,
		cache:                   cache,
		validationResponseRepo:  validationResponseRepo,
		scenarioResponseRepo:    scenarioResponseRepo,
		masteryVerificationRepo: masteryVerificationRepo,
		userEventRepo:           userEventRepo,
		now:                     time.Now,
	}
}

func dashboardCacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("dashboard:%s", userID)
}

func benchmarkCacheKey(userID uuid.UUID, topic string) string {
	return fmt.Sprintf("benchmark:%s:%s", userID, topic)
}

func (s *analyticsService) GetDashboardSummary(ctx context.Context, userID uuid.UUID) (*DashboardSummary, error) {
	key := dashboardCacheKey(userID)
	if s.cache != nil {
		var cached DashboardSummary
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.Warn("Dashboard cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	now := s.now()
	since := now.AddDate(0, 0, -analyticsWindow)

	validations, err := s.validationResponseRepo.GetRecentByUser(ctx, nil, userID, since, 500)
	if err != nil {
		return nil, fmt.Errorf("Failed to load validation responses: %w", err)
	}
	scenarios, err := s.scenarioResponseRepo.GetRecentByUser(ctx, nil, userID, since, 500)
	if err != nil {
		return nil, fmt.Errorf("Failed to load scenario responses: %w", err)
	}
	verified, err := s.masteryVerificationRepo.CountByUserAndStatus(ctx, nil, userID, types.MasteryVerified)
	if err != nil {
		return nil, fmt.Errorf("Failed to count verified objectives: %w", err)
	}
	events, err := s.userEventRepo.GetByUserSince(ctx, nil, userID, since)
	if err != nil {
		return nil, fmt.Errorf("Failed to load user events: %w", err)
	}

	sum := 0.0
	count := 0
	activeDays := map[string]struct{}{}
	for _, row := range validations {
		sum += row.Score * 100
		count++
		activeDays[row.RespondedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	for _, row := range scenarios {
		sum += row.Score
		count++
		activeDays[row.RespondedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	// Any recorded event keeps the streak alive, not just graded rows.
	for _, event := range events {
		activeDays[event.CreatedAt.UTC().Format("2006-01-02")] = struct{}{}
	}
	mean := 0.0
	if count > 0 {
		mean = sum / float64(count)
	}

	summary := &DashboardSummary{
		UserID:             userID,
		WindowDays:         analyticsWindow,
		ValidationCount:    len(validations),
		ScenarioCount:      len(scenarios),
		MeanScore:          mean,
		VerifiedObjectives: verified,
		StudyStreakDays:    streakFrom(activeDays, now),
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, summary, dashboardCacheTTL); err != nil {
			s.log.Warn("Dashboard cache write failed", "error", err)
		}
	}
	return summary, nil
}

// streakFrom counts consecutive active calendar days ending today or
// yesterday.
func streakFrom(activeDays map[string]struct{}, now time.Time) int {
	day := now.UTC()
	if _, ok := activeDays[day.Format("2006-01-02")]; !ok {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for {
		if _, ok := activeDays[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func (s *analyticsService) GetPeerBenchmark(ctx context.Context, userID uuid.UUID, topic string) (*PeerBenchmark, error) {
	key := benchmarkCacheKey(userID, topic)
	if s.cache != nil {
		var cached PeerBenchmark
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
			s.log.Warn("Benchmark cache read failed", "error", err)
		} else if hit {
			return &cached, nil
		}
	}

	since := s.now().AddDate(0, 0, -analyticsWindow)
	scores, err := s.validationResponseRepo.MeanScoresByTopicSince(ctx, nil, topic, since)
	if err != nil {
		return nil, fmt.Errorf("Failed to load cohort scores: %w", err)
	}

	benchmark := &PeerBenchmark{Topic: topic, CohortSize: len(scores)}
	if len(scores) > 0 {
		cohortSum := 0.0
		userMean := 0.0
		below := 0
		for _, row := range scores {
			cohortSum += row.MeanScore
			if row.UserID == userID {
				userMean = row.MeanScore
			}
		}
		for _, row := range scores {
			if row.UserID != userID && row.MeanScore < userMean {
				below++
			}
		}
		benchmark.CohortMean = cohortSum / float64(len(scores)) * 100
		benchmark.UserMean = userMean * 100
		if len(scores) > 1 {
			benchmark.Percentile = float64(below) / float64(len(scores)-1) * 100
		} else {
			benchmark.Percentile = 100
		}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, benchmark, benchmarkCacheTTL); err != nil {
			s.log.Warn("Benchmark cache write failed", "error", err)
		}
	}
	return benchmark, nil
}

// InvalidateUser drops the user's cached dashboard. Benchmark entries
// age out on their own TTL; computing every touched topic key here is
// not worth it.
func (s *analyticsService) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey(userID)); err != nil {
		s.log.Warn("Dashboard cache invalidation failed", "error", err)
	}
}
