package whatsapp

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Provider defines the interface for WhatsApp API providers
type Provider interface {
	SendMessage(phone, message string) error
	GetName() string
}

// Provisioner is the optional phone management surface. Maytapi exposes
// it; the Meta Cloud API manages numbers in the Meta dashboard instead.
type Provisioner interface {
	AddPhone() (string, error)
	DeletePhone(phoneID string) error
	PhoneStatus(phoneID string) (json.RawMessage, error)
	QRCode(phoneID string) (json.RawMessage, error)
	SetWebhook(phoneID, webhookURL string) error
}

// Config holds configuration for WhatsApp providers
type Config struct {
	Provider      string // "maytapi", "meta"
	APIKey        string
	ProductID     string // Maytapi product ID
	PhoneID       string // Maytapi phone ID
	PhoneNumberID string // Meta Cloud API phone number ID
	BaseURL       string
}

// MaytapiService implements WhatsApp via Maytapi
type MaytapiService struct {
	config *Config
	client *http.Client
}

// NewMaytapiService creates a new Maytapi WhatsApp service.
// productID and token must both be set.
func NewMaytapiService(productID, token, phoneID string) (*MaytapiService, error) {
	if productID == "" || token == "" {
		return nil, errors.New("maytapi product id and token are required")
	}
	return &MaytapiService{
		config: &Config{
			Provider:  "maytapi",
			APIKey:    token,
			ProductID: productID,
			PhoneID:   phoneID,
			BaseURL:   "https://api.maytapi.com/api",
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SendMessage sends a text message via Maytapi
func (s *MaytapiService) SendMessage(phone, message string) error {
	payload := map[string]interface{}{
		"to_number": formatPhoneNumber(phone),
		"type":      "text",
		"message":   message,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/sendMessage", s.config.BaseURL, s.config.ProductID, s.config.PhoneID)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-maytapi-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Maytapi API error: %s", string(body))
	}

	return nil
}

// GetName returns the provider name
func (s *MaytapiService) GetName() string {
	return "Maytapi"
}

// apiRequest performs one Maytapi API call and returns the response body
func (s *MaytapiService) apiRequest(method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, s.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-maytapi-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Maytapi API error: %s", string(body))
	}
	return body, nil
}

// AddPhone provisions a new phone slot and returns its id
func (s *MaytapiService) AddPhone() (string, error) {
	body, err := s.apiRequest("POST", fmt.Sprintf("/%s/addPhone", s.config.ProductID), nil)
	if err != nil {
		return "", err
	}

	var out struct {
		PhoneID json.Number `json:"phone_id"`
		Data    struct {
			ID json.Number `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse addPhone response: %w", err)
	}
	if out.PhoneID.String() != "" {
		return out.PhoneID.String(), nil
	}
	if out.Data.ID.String() != "" {
		return out.Data.ID.String(), nil
	}
	return "", errors.New("maytapi did not return a phone id")
}

// DeletePhone removes a phone slot from the Maytapi account
func (s *MaytapiService) DeletePhone(phoneID string) error {
	_, err := s.apiRequest("DELETE", fmt.Sprintf("/%s/%s", s.config.ProductID, phoneID), nil)
	return err
}

// PhoneStatus returns the raw status payload for a phone
func (s *MaytapiService) PhoneStatus(phoneID string) (json.RawMessage, error) {
	return s.apiRequest("GET", fmt.Sprintf("/%s/%s/status", s.config.ProductID, phoneID), nil)
}

// QRCode returns the raw screen payload holding the pairing QR code
func (s *MaytapiService) QRCode(phoneID string) (json.RawMessage, error) {
	return s.apiRequest("GET", fmt.Sprintf("/%s/%s/screen", s.config.ProductID, phoneID), nil)
}

// SetWebhook points the phone's inbound messages at webhookURL
func (s *MaytapiService) SetWebhook(phoneID, webhookURL string) error {
	_, err := s.apiRequest("POST", fmt.Sprintf("/%s/%s/setWebhook", s.config.ProductID, phoneID),
		map[string]string{"webhook": webhookURL})
	return err
}

// MetaCloudService implements WhatsApp via the Meta Cloud API
type MetaCloudService struct {
	config *Config
	client *http.Client
}

// NewMetaCloudService creates a new Meta Cloud API WhatsApp service
func NewMetaCloudService(accessToken, phoneNumberID string) *MetaCloudService {
	return &MetaCloudService{
		config: &Config{
			Provider:      "meta",
			APIKey:        accessToken,
			PhoneNumberID: phoneNumberID,
			BaseURL:       "https://graph.facebook.com/v18.0",
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendMessage sends a text message via the Cloud API (24hr session window)
func (s *MetaCloudService) SendMessage(phone, message string) error {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                formatPhoneNumber(phone),
		"type":              "text",
		"text": map[string]string{
			"preview_url": "false",
			"body":        message,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.config.BaseURL, s.config.PhoneNumberID)
	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp map[string]interface{}
		if json.Unmarshal(body, &errResp) == nil {
			if errObj, ok := errResp["error"].(map[string]interface{}); ok {
				if msg, ok := errObj["message"].(string); ok {
					return fmt.Errorf("WhatsApp API error: %s", msg)
				}
			}
		}
		return fmt.Errorf("WhatsApp API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// GetName returns the provider name
func (s *MetaCloudService) GetName() string {
	return "Meta Cloud API"
}

// CreateProvider creates a WhatsApp provider based on available credentials.
// Returns nil when nothing is configured; callers degrade to no auto-responses.
func CreateProvider(maytapiProductID, maytapiToken, maytapiPhoneID, metaToken, metaPhoneNumberID string) Provider {
	if maytapiProductID != "" && maytapiToken != "" {
		svc, err := NewMaytapiService(maytapiProductID, maytapiToken, maytapiPhoneID)
		if err == nil {
			return svc
		}
	}
	if metaToken != "" && metaPhoneNumberID != "" {
		return NewMetaCloudService(metaToken, metaPhoneNumberID)
	}
	return nil
}

func formatPhoneNumber(phone string) string {
	// Keep digits only; providers want E.164 without the plus
	cleaned := ""
	for _, c := range phone {
		if c >= '0' && c <= '9' {
			cleaned += string(c)
		}
	}
	return cleaned
}
