package services

import (
	"context"
	"fmt"
	"log"

	"lead-backend/internal/cache"
	"lead-backend/internal/distribution"
	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/ws"
)

type LeadService struct {
	Repo        *repositories.LeadRepository
	DistRepo    *repositories.DistributionRepository
	UserRepo    *repositories.UserRepository
	SettingRepo *repositories.SystemSettingRepository
	Engine      *distribution.Engine
	Hub         *ws.Hub
}

func NewLeadService(
	repo *repositories.LeadRepository,
	distRepo *repositories.DistributionRepository,
	userRepo *repositories.UserRepository,
	settingRepo *repositories.SystemSettingRepository,
	engine *distribution.Engine,
	hub *ws.Hub,
) *LeadService {
	return &LeadService{
		Repo:        repo,
		DistRepo:    distRepo,
		UserRepo:    userRepo,
		SettingRepo: settingRepo,
		Engine:      engine,
		Hub:         hub,
	}
}

// CreateLead captures a lead and, when automatic distribution is
// enabled, assigns it immediately. The winning broker is notified over
// the hub; an unassigned lead surfaces through listings only.
func (s *LeadService) CreateLead(ctx context.Context, req *models.CreateLeadRequest) (*models.Lead, error) {
	if req.ContactName == "" || req.Phone == "" {
		return nil, fmt.Errorf("%w: contact_name and phone are required", ErrValidation)
	}

	lead := &models.Lead{
		ContactName:    req.ContactName,
		Phone:          req.Phone,
		InitialMessage: req.InitialMessage,
		Source:         req.Source,
		Notes:          req.Notes,
	}
	if err := s.Repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	if s.distributionEnabled(ctx) {
		broker, err := s.Engine.Distribute(ctx, lead.ID)
		switch {
		case err != nil:
			// The lead exists either way; assignment can be retried
			log.Printf("[Lead] Distribution failed for lead %d: %v", lead.ID, err)
		case broker != nil && s.Hub != nil:
			s.Hub.NotifyNewLead(broker.UserID, lead)
		}
	}
	cache.InvalidateLeadCaches(ctx)

	// Reload to pick up assignment state
	return s.Repo.Get(ctx, lead.ID)
}

// GetLead returns one lead. Brokers only see their own.
func (s *LeadService) GetLead(ctx context.Context, id, callerID int, callerRole string) (*models.Lead, error) {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole != "admin" {
		if lead.AssignedBrokerID == nil || *lead.AssignedBrokerID != callerID {
			return nil, ErrForbidden
		}
	}
	return lead, nil
}

// ListLeads returns leads for the caller. Brokers are scoped to leads
// assigned to them regardless of requested filters.
func (s *LeadService) ListLeads(ctx context.Context, filter *models.LeadFilter, callerID int, callerRole string) ([]*models.Lead, error) {
	if callerRole != "admin" {
		filter.AssignedBrokerID = &callerID
		filter.Unassigned = false
	}
	return s.Repo.List(ctx, filter)
}

// UpdateLead applies a partial update. Brokers may only touch their own
// leads and cannot move assignment. An admin assignment change writes a
// manual ledger entry; an explicit null unassigns without one.
func (s *LeadService) UpdateLead(ctx context.Context, id int, req *models.UpdateLeadRequest, callerID int, callerRole string) (*models.Lead, error) {
	lead, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if callerRole != "admin" {
		if lead.AssignedBrokerID == nil || *lead.AssignedBrokerID != callerID {
			return nil, ErrForbidden
		}
		if req.AssignedBrokerSet {
			return nil, ErrForbidden
		}
	}

	if req.Status != nil && !models.ValidLeadStatus(*req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
	}

	if err := s.Repo.Update(ctx, id, req); err != nil {
		return nil, err
	}

	if req.AssignedBrokerSet {
		if err := s.changeAssignment(ctx, lead, req.AssignedBrokerID); err != nil {
			return nil, err
		}
	}

	cache.InvalidateLeadCaches(ctx)
	return s.Repo.Get(ctx, id)
}

func (s *LeadService) changeAssignment(ctx context.Context, lead *models.Lead, target *int) error {
	if target == nil {
		// Unassign: no ledger entry, the history already happened
		if lead.AssignedBrokerID == nil {
			return nil
		}
		return s.Repo.SetAssignment(ctx, lead.ID, nil, s.Engine.Now())
	}

	if lead.AssignedBrokerID != nil && *lead.AssignedBrokerID == *target {
		return nil
	}

	// Target must be an existing account
	if _, err := s.UserRepo.Get(ctx, *target); err != nil {
		return fmt.Errorf("%w: broker user %d not found", ErrValidation, *target)
	}

	return s.Engine.Assign(ctx, lead.ID, *target)
}

// Distribute runs the engine on an unassigned lead. Returns the winning
// broker, or nil when every eligible broker is at quota.
func (s *LeadService) Distribute(ctx context.Context, leadID int) (*models.Broker, error) {
	broker, err := s.Engine.Distribute(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if broker != nil && s.Hub != nil {
		if lead, err := s.Repo.Get(ctx, leadID); err == nil {
			s.Hub.NotifyNewLead(broker.UserID, lead)
		}
	}
	cache.InvalidateLeadCaches(ctx)
	return broker, nil
}

// DeleteLead removes a lead. Ledger rows cascade with it.
func (s *LeadService) DeleteLead(ctx context.Context, id int) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	cache.InvalidateLeadCaches(ctx)
	return nil
}

// DistributionHistory returns the lead's ledger entries, oldest first
func (s *LeadService) DistributionHistory(ctx context.Context, leadID, callerID int, callerRole string) ([]*models.LeadDistribution, error) {
	if _, err := s.GetLead(ctx, leadID, callerID, callerRole); err != nil {
		return nil, err
	}
	return s.DistRepo.ListForLead(ctx, leadID)
}

func (s *LeadService) distributionEnabled(ctx context.Context) bool {
	setting, err := s.SettingRepo.Get(ctx, "distribution_enabled")
	if err != nil {
		// Missing or unreadable setting means distribution stays on
		return true
	}
	return setting.SettingValue != "false"
}
