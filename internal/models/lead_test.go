package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLeadRequestBrokerAbsent(t *testing.T) {
	var req UpdateLeadRequest
	err := json.Unmarshal([]byte(`{"status": "in_progress"}`), &req)
	require.NoError(t, err)

	assert.False(t, req.AssignedBrokerSet)
	assert.Nil(t, req.AssignedBrokerID)
	require.NotNil(t, req.Status)
	assert.Equal(t, LeadStatusInProgress, *req.Status)
}

func TestUpdateLeadRequestBrokerExplicitNull(t *testing.T) {
	var req UpdateLeadRequest
	err := json.Unmarshal([]byte(`{"assigned_broker_id": null}`), &req)
	require.NoError(t, err)

	assert.True(t, req.AssignedBrokerSet)
	assert.Nil(t, req.AssignedBrokerID)
}

func TestUpdateLeadRequestBrokerValue(t *testing.T) {
	var req UpdateLeadRequest
	err := json.Unmarshal([]byte(`{"assigned_broker_id": 42, "notes": ""}`), &req)
	require.NoError(t, err)

	assert.True(t, req.AssignedBrokerSet)
	require.NotNil(t, req.AssignedBrokerID)
	assert.Equal(t, 42, *req.AssignedBrokerID)
	require.NotNil(t, req.Notes)
	assert.Equal(t, "", *req.Notes)
}

func TestUpdateLeadRequestInvalidJSON(t *testing.T) {
	var req UpdateLeadRequest
	err := json.Unmarshal([]byte(`{"assigned_broker_id": "nope"}`), &req)
	assert.Error(t, err)
}

func TestValidLeadStatus(t *testing.T) {
	assert.True(t, ValidLeadStatus(LeadStatusNew))
	assert.True(t, ValidLeadStatus(LeadStatusLost))
	assert.False(t, ValidLeadStatus("archived"))
	assert.False(t, ValidLeadStatus(""))
}
