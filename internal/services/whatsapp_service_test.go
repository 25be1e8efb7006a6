package services

import (
	"context"
	"testing"

	"lead-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanSendFrom(t *testing.T) {
	assert.NoError(t, canSendFrom(&models.WhatsAppConnection{
		PhoneID: "90210",
		Status:  models.ConnectionConnected,
	}))

	for _, status := range []string{models.ConnectionConnecting, models.ConnectionDisconnected} {
		err := canSendFrom(&models.WhatsAppConnection{PhoneID: "90210", Status: status})
		assert.ErrorIs(t, err, ErrValidation, "status %s", status)
	}
}

func TestSendMessageRejectsIncompleteRequests(t *testing.T) {
	svc := &WhatsAppService{}

	err := svc.SendMessage(context.Background(), 1, &models.SendMessageRequest{
		Message: "hello",
	})
	assert.ErrorIs(t, err, ErrValidation)

	err = svc.SendMessage(context.Background(), 1, &models.SendMessageRequest{
		ToNumber: "+919876543210",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSendMessageRequiresProvider(t *testing.T) {
	svc := &WhatsAppService{}

	err := svc.SendMessage(context.Background(), 1, &models.SendMessageRequest{
		ToNumber: "+919876543210",
		Message:  "hello",
	})
	assert.ErrorIs(t, err, ErrValidation)
}
