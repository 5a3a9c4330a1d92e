package services

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medloop/medloop-backend/internal/logger"
	"github.com/medloop/medloop-backend/internal/repos"
	"github.com/medloop/medloop-backend/internal/types"
)

type memoryCache struct {
	entries map[string][]byte
	sets    int
	deletes []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	c.sets++
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.entries, key)
		c.deletes = append(c.deletes, key)
	}
	return nil
}

func (c *memoryCache) Close() error { return nil }

type fakeUserEventRepo struct {
	events []*types.UserEvent
}

func (r *fakeUserEventRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.UserEvent) ([]*types.UserEvent, error) {
	r.events = append(r.events, rows...)
	return rows, nil
}

func (r *fakeUserEventRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.UserEvent, error) {
	var out []*types.UserEvent
	for _, row := range r.events {
		if row.UserID == userID && !row.CreatedAt.Before(since) {
			out = append(out, row)
		}
	}
	return out, nil
}

type fakeBenchmarkRepo struct {
	fakeValidationResponseRepo
	scores []repos.UserTopicScore
}

func (r *fakeBenchmarkRepo) MeanScoresByTopicSince(ctx context.Context, tx *gorm.DB, topic string, since time.Time) ([]repos.UserTopicScore, error) {
	return r.scores, nil
}

func TestStreakFrom(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) string {
		return now.AddDate(0, 0, offset).Format("2006-01-02")
	}

	cases := []struct {
		name string
		days []string
		want int
	}{
		{name: "no_activity", days: nil, want: 0},
		{name: "today_only", days: []string{day(0)}, want: 1},
		{name: "three_day_run_ending_today", days: []string{day(0), day(-1), day(-2)}, want: 3},
		{name: "run_ending_yesterday_still_counts", days: []string{day(-1), day(-2)}, want: 2},
		{name: "gap_breaks_streak", days: []string{day(0), day(-2), day(-3)}, want: 1},
		{name: "stale_run_two_days_back", days: []string{day(-2), day(-3)}, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			active := map[string]struct{}{}
			for _, d := range tc.days {
				active[d] = struct{}{}
			}
			if got := streakFrom(active, now); got != tc.want {
				t.Fatalf("streak = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGetDashboardSummaryComputesAndCaches(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	userID := uuid.New()

	validationRows := []*types.ValidationResponse{
		{ID: uuid.New(), UserID: userID, Score: 0.8, RespondedAt: now},
		{ID: uuid.New(), UserID: userID, Score: 0.6, RespondedAt: now.AddDate(0, 0, -1)},
	}
	scenarioRows := []*types.ScenarioResponse{
		{ID: uuid.New(), UserID: userID, Score: 70, RespondedAt: now.AddDate(0, 0, -2)},
	}

	cache := newMemoryCache()
	svc := &analyticsService{
		log:                     logger.NewNop(),
		cache:                   cache,
		validationResponseRepo:  &fakeValidationResponseRepo{rows: validationRows},
		scenarioResponseRepo:    &fakeScenarioResponseRepo{rows: scenarioRows},
		masteryVerificationRepo: &fakeMasteryVerificationRepo{},
		userEventRepo:           &fakeUserEventRepo{},
		now:                     func() time.Time { return now },
	}

	summary, err := svc.GetDashboardSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.ValidationCount != 2 || summary.ScenarioCount != 1 {
		t.Fatalf("counts wrong: %+v", summary)
	}
	// (80 + 60 + 70) / 3 on the common scale.
	if math.Abs(summary.MeanScore-70) > 1e-9 {
		t.Fatalf("mean = %v, want 70", summary.MeanScore)
	}
	if summary.StudyStreakDays != 3 {
		t.Fatalf("streak = %d, want 3", summary.StudyStreakDays)
	}
	if cache.sets != 1 {
		t.Fatalf("summary should be written through to the cache once, got %d", cache.sets)
	}

	// Second read must come from the cache: swap the repo data and
	// expect the old numbers.
	svc.validationResponseRepo = &fakeValidationResponseRepo{}
	cached, err := svc.GetDashboardSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("cached dashboard: %v", err)
	}
	if cached.ValidationCount != 2 {
		t.Fatalf("expected cached summary, got %+v", cached)
	}
}

func TestGetDashboardSummaryStreakCountsEventOnlyDays(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	userID := uuid.New()

	// Graded rows on today and two days ago; yesterday only has a
	// recorded event. The event bridges the gap.
	validationRows := []*types.ValidationResponse{
		{ID: uuid.New(), UserID: userID, Score: 0.8, RespondedAt: now},
		{ID: uuid.New(), UserID: userID, Score: 0.7, RespondedAt: now.AddDate(0, 0, -2)},
	}
	events := []*types.UserEvent{
		{ID: uuid.New(), UserID: userID, EventType: "validation_response", CreatedAt: now.AddDate(0, 0, -1)},
	}

	svc := &analyticsService{
		log:                     logger.NewNop(),
		validationResponseRepo:  &fakeValidationResponseRepo{rows: validationRows},
		scenarioResponseRepo:    &fakeScenarioResponseRepo{},
		masteryVerificationRepo: &fakeMasteryVerificationRepo{},
		userEventRepo:           &fakeUserEventRepo{events: events},
		now:                     func() time.Time { return now },
	}

	summary, err := svc.GetDashboardSummary(context.Background(), userID)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if summary.StudyStreakDays != 3 {
		t.Fatalf("streak = %d, want 3 with the event-only day counted", summary.StudyStreakDays)
	}
}

func TestGetPeerBenchmarkPercentile(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	userID := uuid.New()

	// Cohort of five; the user's mean beats two of the other four.
	scores := []repos.UserTopicScore{
		{UserID: uuid.New(), MeanScore: 0.50},
		{UserID: uuid.New(), MeanScore: 0.60},
		{UserID: userID, MeanScore: 0.70},
		{UserID: uuid.New(), MeanScore: 0.80},
		{UserID: uuid.New(), MeanScore: 0.90},
	}

	svc := &analyticsService{
		log:                    logger.NewNop(),
		validationResponseRepo: &fakeBenchmarkRepo{scores: scores},
		now:                    func() time.Time { return now },
	}

	benchmark, err := svc.GetPeerBenchmark(context.Background(), userID, "cardiology")
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if benchmark.CohortSize != 5 {
		t.Fatalf("cohort size = %d, want 5", benchmark.CohortSize)
	}
	if math.Abs(benchmark.UserMean-70) > 1e-9 {
		t.Fatalf("user mean = %v, want 70", benchmark.UserMean)
	}
	if math.Abs(benchmark.Percentile-50) > 1e-9 {
		t.Fatalf("percentile = %v, want 50", benchmark.Percentile)
	}
}

func TestGetPeerBenchmarkEmptyCohort(t *testing.T) {
	svc := &analyticsService{
		log:                    logger.NewNop(),
		validationResponseRepo: &fakeBenchmarkRepo{},
		now:                    time.Now,
	}

	benchmark, err := svc.GetPeerBenchmark(context.Background(), uuid.New(), "cardiology")
	if err != nil {
		t.Fatalf("benchmark: %v", err)
	}
	if benchmark.CohortSize != 0 || benchmark.Percentile != 0 {
		t.Fatalf("empty cohort should be all zeros: %+v", benchmark)
	}
}

func TestInvalidateUserDropsDashboardOnly(t *testing.T) {
	cache := newMemoryCache()
	userID := uuid.New()
	cache.entries[dashboardCacheKey(userID)] = []byte(`{}`)
	cache.entries[benchmarkCacheKey(userID, "cardiology")] = []byte(`{}`)

	svc := &analyticsService{log: logger.NewNop(), cache: cache}
	svc.InvalidateUser(context.Background(), userID)

	if _, ok := cache.entries[dashboardCacheKey(userID)]; ok {
		t.Fatalf("dashboard entry should be dropped")
	}
	if _, ok := cache.entries[benchmarkCacheKey(userID, "cardiology")]; !ok {
		t.Fatalf("benchmark entries age out on TTL and must not be dropped here")
	}
}
