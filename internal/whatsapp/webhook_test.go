package whatsapp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetaWebhook(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "102290129340398",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "15550001111", "phone_number_id": "106540352242922"},
					"contacts": [{"wa_id": "919876543210", "profile": {"name": "Ravi Kumar"}}],
					"messages": [{
						"from": "919876543210",
						"id": "wamid.HBgLMTY",
						"timestamp": "1718035200",
						"type": "text",
						"text": {"body": "Hi, I am interested in a 2BHK"}
					}]
				}
			}]
		}]
	}`)

	messages, err := ParseMetaWebhook(body)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	msg := messages[0]
	assert.Equal(t, "106540352242922", msg.PhoneID)
	assert.Equal(t, "919876543210", msg.From)
	assert.Equal(t, "Ravi Kumar", msg.ContactName)
	assert.Equal(t, "Hi, I am interested in a 2BHK", msg.Text)
	assert.Equal(t, time.Unix(1718035200, 0).UTC(), msg.Timestamp)
}

func TestParseMetaWebhookSkipsNonText(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"phone_number_id": "106540352242922"},
					"messages": [
						{"from": "919876543210", "type": "image", "timestamp": "1718035200"},
						{"from": "919876543210", "type": "text", "timestamp": "1718035300", "text": {"body": "second"}}
					]
				}
			}]
		}]
	}`)

	messages, err := ParseMetaWebhook(body)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "second", messages[0].Text)
}

func TestParseMetaWebhookStatusOnly(t *testing.T) {
	body := []byte(`{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{"field": "statuses", "value": {}}]
		}]
	}`)

	messages, err := ParseMetaWebhook(body)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestParseMetaWebhookInvalidJSON(t *testing.T) {
	_, err := ParseMetaWebhook([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseMaytapiWebhook(t *testing.T) {
	body := []byte(`{
		"type": "message",
		"phone_id": 34901,
		"message": {"type": "text", "text": "Looking for a plot near the highway", "fromMe": false},
		"user": {"phone": "919812345678", "name": "Sneha"}
	}`)

	msg, err := ParseMaytapiWebhook(body)
	require.NoError(t, err)
	require.NotNil(t, msg)

	assert.Equal(t, "34901", msg.PhoneID)
	assert.Equal(t, "919812345678", msg.From)
	assert.Equal(t, "Sneha", msg.ContactName)
	assert.Equal(t, "Looking for a plot near the highway", msg.Text)
}

func TestParseMaytapiWebhookIgnoresOutbound(t *testing.T) {
	body := []byte(`{
		"type": "message",
		"phone_id": 34901,
		"message": {"type": "text", "text": "our reply", "fromMe": true},
		"user": {"phone": "919812345678", "name": "Sneha"}
	}`)

	msg, err := ParseMaytapiWebhook(body)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestParseMaytapiWebhookIgnoresStatusEvents(t *testing.T) {
	body := []byte(`{"type": "status", "phone_id": 34901}`)

	msg, err := ParseMaytapiWebhook(body)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestParseMaytapiWebhookIgnoresMedia(t *testing.T) {
	body := []byte(`{
		"type": "message",
		"phone_id": 34901,
		"message": {"type": "image", "fromMe": false},
		"user": {"phone": "919812345678", "name": "Sneha"}
	}`)

	msg, err := ParseMaytapiWebhook(body)
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestFormatPhoneNumber(t *testing.T) {
	assert.Equal(t, "919876543210", formatPhoneNumber("+91 98765 43210"))
	assert.Equal(t, "15550001111", formatPhoneNumber("1-555-000-1111"))
	assert.Equal(t, "447911123456", formatPhoneNumber("447911123456"))
}
