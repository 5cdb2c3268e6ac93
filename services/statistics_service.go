package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/utils/cache"
	"gorm.io/gorm"
)

// GroupBy selects the aggregation axis of the statistics engine
type GroupBy string

const (
	GroupByContest   GroupBy = "contest"
	GroupBySpecialty GroupBy = "specialty"
	GroupByCenter    GroupBy = "center"
	GroupByMonth     GroupBy = "month"
)

const (
	statsCacheKey = "statistics:dashboard"
	statsCacheTTL = 5 * time.Minute
)

// StatisticsService answers the grouped counts behind reports and dashboards.
// The heavy dashboard aggregate is cached in Redis and invalidated on writes.
type StatisticsService struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewStatisticsService creates a new statistics service. The cache may be nil;
// every query then goes straight to the database.
func NewStatisticsService(db *gorm.DB, redisCache *cache.RedisCache) *StatisticsService {
	return &StatisticsService{db: db, cache: redisCache}
}

// DashboardStats is the full aggregate served to the admin dashboard
type DashboardStats struct {
	TotalApplications     int64            `json:"total_applications"`
	ValidatedApplications int64            `json:"validated_applications"`
	PendingApplications   int64            `json:"pending_applications"`
	RejectedApplications  int64            `json:"rejected_applications"`
	TotalContests         int64            `json:"total_contests"`
	TotalCenters          int64            `json:"total_centers"`
	TotalUsers            int64            `json:"total_users"`
	ByContest             map[string]int64 `json:"by_contest"`
	BySpecialty           map[string]int64 `json:"by_specialty"`
	ByCenter              map[string]int64 `json:"by_center"`
	ByMonth               map[string]int64 `json:"by_month"`
}

type groupRow struct {
	Label string
	Count int64
}

// Aggregate returns application counts grouped by the requested axis. The
// result is an empty map when there is no data, never nil; "no data"
// placeholders belong to the presentation layer.
func (s *StatisticsService) Aggregate(ctx context.Context, groupBy GroupBy) (map[string]int64, error) {
	var rows []groupRow
	query := s.db.WithContext(ctx).Model(&model.Application{})

	switch groupBy {
	case GroupByContest:
		query = query.
			Select("contests.title AS label, COUNT(*) AS count").
			Joins("JOIN contests ON contests.id = applications.contest_id").
			Group("contests.title")
	case GroupBySpecialty:
		query = query.
			Select("specialties.label AS label, COUNT(*) AS count").
			Joins("JOIN specialties ON specialties.id = applications.specialty_id").
			Group("specialties.label")
	case GroupByCenter:
		query = query.
			Select("exam_centers.code AS label, COUNT(*) AS count").
			Joins("JOIN exam_centers ON exam_centers.id = applications.center_id").
			Group("exam_centers.code")
	case GroupByMonth:
		query = query.
			Select("to_char(applications.submitted_at, 'MM-YYYY') AS label, COUNT(*) AS count").
			Group("to_char(applications.submitted_at, 'MM-YYYY')")
	default:
		return nil, fmt.Errorf("unknown grouping %q", groupBy)
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate by %s: %w", groupBy, err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		label := row.Label
		if groupBy == GroupByMonth {
			label = FormatMonthLabel(label)
		}
		result[label] = row.Count
	}
	return result, nil
}

// GetDashboardStats returns the full dashboard aggregate, from cache when warm
func (s *StatisticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		var cached DashboardStats
		if err := s.cache.GetJSON(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	stats, err := s.computeDashboardStats(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
			log.Printf("Failed to cache dashboard stats: %v", err)
		}
	}
	return stats, nil
}

// InvalidateCache drops the cached dashboard aggregate. Called after any
// write that changes the counts.
func (s *StatisticsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.Printf("Failed to invalidate statistics cache: %v", err)
	}
}

// CountValidated returns the global number of validated applications, used by
// the public landing figures
func (s *StatisticsService) CountValidated(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Where("status = ?", model.StatusValidated).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count validated applications: %w", err)
	}
	return count, nil
}

// StatusBreakdownByCenter returns per-status counts of one center's
// applications
func (s *StatisticsService) StatusBreakdownByCenter(ctx context.Context, centerID uint) (map[string]int64, error) {
	var rows []groupRow
	err := s.db.WithContext(ctx).Model(&model.Application{}).
		Select("status AS label, COUNT(*) AS count").
		Where("center_id = ?", centerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to break down center %d by status: %w", centerID, err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Label] = row.Count
	}
	return result, nil
}

func (s *StatisticsService) computeDashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Application{}).Count(&stats.TotalApplications).Error; err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	statusCounts := map[model.ApplicationStatus]*int64{
		model.StatusValidated: &stats.ValidatedApplications,
		model.StatusPending:   &stats.PendingApplications,
		model.StatusRejected:  &stats.RejectedApplications,
	}
	for status, dest := range statusCounts {
		err := db.Model(&model.Application{}).Where("status = ?", status).Count(dest).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count %s applications: %w", status, err)
		}
	}

	if err := db.Model(&model.Contest{}).Count(&stats.TotalContests).Error; err != nil {
		return nil, fmt.Errorf("failed to count contests: %w", err)
	}
	if err := db.Model(&model.ExamCenter{}).Count(&stats.TotalCenters).Error; err != nil {
		return nil, fmt.Errorf("failed to count centers: %w", err)
	}
	if err := db.Model(&model.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var err error
	if stats.ByContest, err = s.Aggregate(ctx, GroupByContest); err != nil {
		return nil, err
	}
	if stats.BySpecialty, err = s.Aggregate(ctx, GroupBySpecialty); err != nil {
		return nil, err
	}
	if stats.ByCenter, err = s.Aggregate(ctx, GroupByCenter); err != nil {
		return nil, err
	}
	if stats.ByMonth, err = s.Aggregate(ctx, GroupByMonth); err != nil {
		return nil, err
	}

	return stats, nil
}

var monthNames = [...]string{"Jan", "Fév", "Mar", "Avr", "Mai", "Jun",
	"Jul", "Aoû", "Sep", "Oct", "Nov", "Déc"}

// FormatMonthLabel turns an MM-YYYY bucket into a French label such as
// "Fév 2025". Unparseable input comes back unchanged.
func FormatMonthLabel(bucket string) string {
	parts := strings.Split(bucket, "-")
	if len(parts) != 2 {
		return bucket
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return bucket
	}
	return monthNames[month-1] + " " + parts[1]
}
