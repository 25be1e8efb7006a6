package services

import (
	"context"
	"fmt"

	"lead-backend/internal/cache"
	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/timeutil"
)

type BrokerService struct {
	Repo     *repositories.BrokerRepository
	UserRepo *repositories.UserRepository
	DistRepo *repositories.DistributionRepository
}

func NewBrokerService(repo *repositories.BrokerRepository, userRepo *repositories.UserRepository, distRepo *repositories.DistributionRepository) *BrokerService {
	return &BrokerService{
		Repo:     repo,
		UserRepo: userRepo,
		DistRepo: distRepo,
	}
}

// CreateBroker enrolls an existing user in the distribution roster
func (s *BrokerService) CreateBroker(ctx context.Context, req *models.CreateBrokerRequest) (*models.Broker, error) {
	if _, err := s.UserRepo.Get(ctx, req.UserID); err != nil {
		return nil, fmt.Errorf("%w: user %d not found", ErrValidation, req.UserID)
	}
	if existing, err := s.Repo.GetByUserID(ctx, req.UserID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: user %d is already a broker", ErrValidation, req.UserID)
	}

	maxPerDay := 50
	if req.MaxLeadsPerDay != nil {
		if *req.MaxLeadsPerDay < 0 {
			return nil, fmt.Errorf("%w: max_leads_per_day cannot be negative", ErrValidation)
		}
		maxPerDay = *req.MaxLeadsPerDay
	}

	broker := &models.Broker{
		UserID:            req.UserID,
		DistributionOrder: req.DistributionOrder,
		IsActive:          true,
		MaxLeadsPerDay:    maxPerDay,
	}
	if err := s.Repo.Create(ctx, broker); err != nil {
		return nil, err
	}

	cache.InvalidateBrokerCaches(ctx)
	return s.Repo.Get(ctx, broker.ID)
}

func (s *BrokerService) GetBroker(ctx context.Context, id int) (*models.Broker, error) {
	return s.Repo.Get(ctx, id)
}

// ListBrokers returns all brokers with today's ledger counts attached
func (s *BrokerService) ListBrokers(ctx context.Context) ([]*models.BrokerDailyLoad, error) {
	brokers, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}

	loads, err := s.DistRepo.LoadsSince(ctx, timeutil.StartOfDay(timeutil.Now()))
	if err != nil {
		return nil, err
	}

	result := make([]*models.BrokerDailyLoad, 0, len(brokers))
	for _, b := range brokers {
		result = append(result, &models.BrokerDailyLoad{
			Broker:     b,
			LeadsToday: loads[b.UserID],
		})
	}
	return result, nil
}

// UpdateBroker applies a partial update to a broker profile
func (s *BrokerService) UpdateBroker(ctx context.Context, id int, req *models.UpdateBrokerRequest) (*models.Broker, error) {
	if req.MaxLeadsPerDay != nil && *req.MaxLeadsPerDay < 0 {
		return nil, fmt.Errorf("%w: max_leads_per_day cannot be negative", ErrValidation)
	}
	if err := s.Repo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	cache.InvalidateBrokerCaches(ctx)
	return s.Repo.Get(ctx, id)
}

// Reorder rewrites the roster's distribution positions
func (s *BrokerService) Reorder(ctx context.Context, req *models.ReorderBrokersRequest) ([]*models.Broker, error) {
	if len(req.BrokerIDs) == 0 {
		return nil, fmt.Errorf("%w: broker_ids is empty", ErrValidation)
	}

	seen := make(map[int]bool, len(req.BrokerIDs))
	for _, id := range req.BrokerIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: broker %d appears twice", ErrValidation, id)
		}
		seen[id] = true
	}

	if err := s.Repo.Reorder(ctx, req.BrokerIDs); err != nil {
		return nil, err
	}

	cache.InvalidateBrokerCaches(ctx)
	return s.Repo.List(ctx)
}

// DeleteBroker removes a broker profile. The user account and any leads
// already assigned to it stay.
func (s *BrokerService) DeleteBroker(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateBrokerCaches(ctx)
	return nil
}
