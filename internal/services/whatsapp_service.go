package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"lead-backend/internal/metrics"
	"lead-backend/internal/models"
	"lead-backend/internal/repositories"
	"lead-backend/internal/timeutil"
	"lead-backend/internal/whatsapp"
)

// WhatsAppService turns inbound provider messages into leads and
// manages provisioned connections
type WhatsAppService struct {
	ConnRepo    *repositories.WhatsAppConnectionRepository
	LeadRepo    *repositories.LeadRepository
	SettingRepo *repositories.SystemSettingRepository
	Leads       *LeadService
	Provider    whatsapp.Provider

	// WebhookBaseURL is the public base URL registered with the
	// provider when a phone is provisioned
	WebhookBaseURL string
}

func NewWhatsAppService(
	connRepo *repositories.WhatsAppConnectionRepository,
	leadRepo *repositories.LeadRepository,
	settingRepo *repositories.SystemSettingRepository,
	leads *LeadService,
	provider whatsapp.Provider,
	webhookBaseURL string,
) *WhatsAppService {
	return &WhatsAppService{
		ConnRepo:       connRepo,
		LeadRepo:       leadRepo,
		SettingRepo:    settingRepo,
		Leads:          leads,
		Provider:       provider,
		WebhookBaseURL: webhookBaseURL,
	}
}

// provisioner returns the provider's phone management surface, nil when
// the configured provider has none
func (s *WhatsAppService) provisioner() whatsapp.Provisioner {
	p, ok := s.Provider.(whatsapp.Provisioner)
	if !ok {
		return nil
	}
	return p
}

// ProcessInbound handles one inbound message: repeat contacts are
// folded into their open lead, new contacts become a fresh lead that
// goes straight through distribution.
func (s *WhatsAppService) ProcessInbound(ctx context.Context, msg *whatsapp.InboundMessage, providerName string) error {
	if msg == nil || msg.Text == "" {
		return nil
	}

	if msg.PhoneID != "" {
		if err := s.ConnRepo.TouchLastSeen(ctx, msg.PhoneID, timeutil.Now()); err != nil {
			log.Printf("[WhatsApp] Failed to update connection %s: %v", msg.PhoneID, err)
		}
	}

	// Repeat message from a contact with an open lead
	if existing, err := s.LeadRepo.GetOpenByPhone(ctx, msg.From); err == nil {
		if err := s.LeadRepo.AppendMessage(ctx, existing.ID, msg.Text); err != nil {
			metrics.WebhookEventsTotal.WithLabelValues(providerName, "error").Inc()
			return fmt.Errorf("failed to append message to lead %d: %w", existing.ID, err)
		}
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "followup").Inc()
		return nil
	}

	contactName := msg.ContactName
	if contactName == "" {
		contactName = msg.From
	}

	lead, err := s.Leads.CreateLead(ctx, &models.CreateLeadRequest{
		ContactName:    contactName,
		Phone:          msg.From,
		InitialMessage: msg.Text,
		Source:         models.LeadSourceWhatsApp,
	})
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(providerName, "error").Inc()
		return fmt.Errorf("failed to create lead for %s: %w", msg.From, err)
	}

	s.autoRespond(ctx, msg)

	metrics.WebhookEventsTotal.WithLabelValues(providerName, "lead").Inc()
	log.Printf("[WhatsApp] Created lead %d from %s via %s", lead.ID, msg.From, providerName)
	return nil
}

// autoRespond sends the welcome message when the receiving connection
// has auto_respond on and a provider is configured
func (s *WhatsAppService) autoRespond(ctx context.Context, msg *whatsapp.InboundMessage) {
	if s.Provider == nil || msg.PhoneID == "" {
		return
	}

	conn, err := s.ConnRepo.GetByPhoneID(ctx, msg.PhoneID)
	if err != nil || !conn.AutoRespond {
		return
	}

	welcome := conn.WelcomeMessage
	if welcome == "" {
		if setting, err := s.SettingRepo.Get(ctx, "welcome_message"); err == nil {
			welcome = setting.SettingValue
		}
	}
	if welcome == "" {
		return
	}

	if err := s.Provider.SendMessage(msg.From, welcome); err != nil {
		log.Printf("[WhatsApp] Auto-response to %s failed: %v", msg.From, err)
	}
}

// Connection management

// CreateConnection registers a WhatsApp phone. Without an explicit
// phone_id a new slot is provisioned at the provider and its webhook is
// pointed at this server.
func (s *WhatsAppService) CreateConnection(ctx context.Context, req *models.CreateConnectionRequest) (*models.WhatsAppConnection, error) {
	phoneID := req.PhoneID
	provisioned := false

	if phoneID == "" {
		prov := s.provisioner()
		if prov == nil {
			return nil, fmt.Errorf("%w: phone_id is required when the provider cannot provision phones", ErrValidation)
		}
		id, err := prov.AddPhone()
		if err != nil {
			return nil, fmt.Errorf("failed to provision phone: %w", err)
		}
		phoneID = id
		provisioned = true
	}

	if existing, err := s.ConnRepo.GetByPhoneID(ctx, phoneID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: phone_id %s already registered", ErrValidation, phoneID)
	}

	conn := &models.WhatsAppConnection{
		PhoneID:        phoneID,
		AutoRespond:    req.AutoRespond,
		WelcomeMessage: req.WelcomeMessage,
	}
	if err := s.ConnRepo.Create(ctx, conn); err != nil {
		return nil, err
	}

	if provisioned && s.WebhookBaseURL != "" {
		status := models.ConnectionConnecting
		configured := true
		if err := s.provisioner().SetWebhook(phoneID, s.WebhookBaseURL+"/webhooks/maytapi"); err != nil {
			log.Printf("[WhatsApp] Webhook setup failed for phone %s: %v", phoneID, err)
			configured = false
			status = models.ConnectionDisconnected
		}
		if err := s.ConnRepo.Update(ctx, conn.ID, &models.UpdateConnectionRequest{
			Status:            &status,
			WebhookConfigured: &configured,
		}); err != nil {
			log.Printf("[WhatsApp] Failed to record webhook state for connection %d: %v", conn.ID, err)
		}
		return s.ConnRepo.Get(ctx, conn.ID)
	}

	return conn, nil
}

// ConnectionQR returns the provider's pairing screen payload for the
// connection's phone
func (s *WhatsAppService) ConnectionQR(ctx context.Context, id int) (json.RawMessage, error) {
	prov := s.provisioner()
	if prov == nil {
		return nil, fmt.Errorf("%w: provider does not expose pairing QR codes", ErrValidation)
	}
	conn, err := s.ConnRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return prov.QRCode(conn.PhoneID)
}

// RefreshConnectionStatus asks the provider for the phone's live status
// and stores it when it maps to a known state
func (s *WhatsAppService) RefreshConnectionStatus(ctx context.Context, id int) (json.RawMessage, error) {
	prov := s.provisioner()
	if prov == nil {
		return nil, fmt.Errorf("%w: provider does not expose phone status", ErrValidation)
	}
	conn, err := s.ConnRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	raw, err := prov.PhoneStatus(conn.PhoneID)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Status string `json:"status"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		switch parsed.Status {
		case models.ConnectionDisconnected, models.ConnectionConnecting, models.ConnectionConnected:
			if err := s.ConnRepo.Update(ctx, id, &models.UpdateConnectionRequest{Status: &parsed.Status}); err != nil {
				log.Printf("[WhatsApp] Failed to store status for connection %d: %v", id, err)
			}
		}
	}
	return raw, nil
}

func (s *WhatsAppService) GetConnection(ctx context.Context, id int) (*models.WhatsAppConnection, error) {
	return s.ConnRepo.Get(ctx, id)
}

func (s *WhatsAppService) ListConnections(ctx context.Context) ([]*models.WhatsAppConnection, error) {
	return s.ConnRepo.List(ctx)
}

func (s *WhatsAppService) UpdateConnection(ctx context.Context, id int, req *models.UpdateConnectionRequest) (*models.WhatsAppConnection, error) {
	if req.Status != nil {
		switch *req.Status {
		case models.ConnectionDisconnected, models.ConnectionConnecting, models.ConnectionConnected:
		default:
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, *req.Status)
		}
	}
	if err := s.ConnRepo.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.ConnRepo.Get(ctx, id)
}

// canSendFrom reports whether the connection can carry an outbound message
func canSendFrom(conn *models.WhatsAppConnection) error {
	if conn.Status != models.ConnectionConnected {
		return fmt.Errorf("%w: connection %s is not connected", ErrValidation, conn.PhoneID)
	}
	return nil
}

// SendMessage sends a text through the connection's phone. The
// connection must be in the connected state.
func (s *WhatsAppService) SendMessage(ctx context.Context, id int, req *models.SendMessageRequest) error {
	if req.ToNumber == "" || req.Message == "" {
		return fmt.Errorf("%w: to_number and message are required", ErrValidation)
	}
	if s.Provider == nil {
		return fmt.Errorf("%w: no outbound provider configured", ErrValidation)
	}

	conn, err := s.ConnRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := canSendFrom(conn); err != nil {
		return err
	}
	return s.Provider.SendMessage(req.ToNumber, req.Message)
}

// DeleteConnection removes the phone at the provider, then the record.
// A provider failure is logged; the local record still goes away.
func (s *WhatsAppService) DeleteConnection(ctx context.Context, id int) error {
	if prov := s.provisioner(); prov != nil {
		if conn, err := s.ConnRepo.Get(ctx, id); err == nil {
			if err := prov.DeletePhone(conn.PhoneID); err != nil {
				log.Printf("[WhatsApp] Provider delete failed for phone %s: %v", conn.PhoneID, err)
			}
		}
	}
	return s.ConnRepo.Delete(ctx, id)
}
