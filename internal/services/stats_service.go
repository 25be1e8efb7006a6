package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lead-backend/internal/cache"
	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/timeutil"
)

type StatsService struct {
	LeadRepo   *repositories.LeadRepository
	BrokerRepo *repositories.BrokerRepository
	DistRepo   *repositories.DistributionRepository
}

func NewStatsService(leadRepo *repositories.LeadRepository, brokerRepo *repositories.BrokerRepository, distRepo *repositories.DistributionRepository) *StatsService {
	return &StatsService{
		LeadRepo:   leadRepo,
		BrokerRepo: brokerRepo,
		DistRepo:   distRepo,
	}
}

// conversionRate is the share of closed leads, as a percentage
func conversionRate(closed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(closed) / float64(total) * 100
}

// statsCacheKey gives brokers their own cache slot. The admin slot is
// the shared DashboardStatsKey so lead-write invalidation reaches it;
// broker slots age out on TTL alone.
func statsCacheKey(callerID int, admin bool) string {
	if admin {
		return cache.DashboardStatsKey
	}
	return fmt.Sprintf("%s:broker:%d", cache.DashboardStatsKey, callerID)
}

// DashboardStats assembles the dashboard aggregates, cached for one
// minute. Broker callers see only their own leads; the roster fields
// stay admin-only.
func (s *StatsService) DashboardStats(ctx context.Context, callerID int, callerRole string) (*models.DashboardStats, error) {
	admin := callerRole == "admin"
	key := statsCacheKey(callerID, admin)

	if data, ok := cache.GetCached(ctx, key); ok {
		var stats models.DashboardStats
		if json.Unmarshal(data, &stats) == nil {
			return &stats, nil
		}
	}

	var scope *int
	if !admin {
		scope = &callerID
	}

	dayStart := timeutil.StartOfDay(timeutil.Now())
	weekAgo := dayStart.AddDate(0, 0, -7)
	monthAgo := dayStart.AddDate(0, 0, -30)

	total, err := s.LeadRepo.CountAll(ctx, scope)
	if err != nil {
		return nil, err
	}
	today, err := s.LeadRepo.CountCreatedSince(ctx, dayStart, scope)
	if err != nil {
		return nil, err
	}
	week, err := s.LeadRepo.CountCreatedSince(ctx, weekAgo, scope)
	if err != nil {
		return nil, err
	}
	month, err := s.LeadRepo.CountCreatedSince(ctx, monthAgo, scope)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.LeadRepo.CountByStatus(ctx, scope)
	if err != nil {
		return nil, err
	}
	bySource, err := s.LeadRepo.CountBySource(ctx, scope)
	if err != nil {
		return nil, err
	}

	stats := &models.DashboardStats{
		TotalLeads:     total,
		LeadsToday:     today,
		LeadsThisWeek:  week,
		LeadsThisMonth: month,
		LeadsByStatus:  byStatus,
		LeadsBySource:  bySource,
		ConversionRate: conversionRate(byStatus[models.LeadStatusClosed], total),
	}

	if admin {
		unassigned, err := s.LeadRepo.CountUnassigned(ctx)
		if err != nil {
			return nil, err
		}
		brokers, err := s.BrokerRepo.ListActiveOrdered(ctx)
		if err != nil {
			return nil, err
		}
		loads, err := s.DistRepo.LoadsSince(ctx, dayStart)
		if err != nil {
			return nil, err
		}

		brokerLoads := make([]models.BrokerDailyLoad, 0, len(brokers))
		for _, b := range brokers {
			brokerLoads = append(brokerLoads, models.BrokerDailyLoad{
				Broker:     b,
				LeadsToday: loads[b.UserID],
			})
		}

		stats.UnassignedLeads = unassigned
		stats.ActiveBrokers = len(brokers)
		stats.BrokerLoadsToday = brokerLoads
	}

	if data, err := json.Marshal(stats); err == nil {
		cache.SetCached(ctx, key, data, time.Minute)
	}

	return stats, nil
}
