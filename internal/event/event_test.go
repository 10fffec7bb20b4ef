package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/artisan-crm/internal/entity"
)

var actor = Actor{ID: 3, Username: "jdoe", Name: "Jane Doe"}

func TestLeadCreatedWireFormat(t *testing.T) {
	when := time.Now()
	lead := &entity.Lead{
		ID:            "lead-1",
		Name:          "Ana Souza",
		Email:         "ana@acme.com",
		Company:       "Acme",
		Stage:         "New",
		LastContacted: &when,
	}

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(NewLeadCreated(lead, actor).JSON()), &payload))

	// key names are the frontend contract
	assert.Equal(t, "lead_created", payload["event"])
	assert.Equal(t, "lead-1", payload["lead_id"])
	assert.Equal(t, float64(3), payload["source"])
	assert.Equal(t, "Jane Doe", payload["sourceName"])
	assert.Equal(t, "Jane Doe added a new lead: Ana Souza", payload["message"])

	leadData := payload["lead_data"].(map[string]any)
	assert.Equal(t, "Acme", leadData["company"])
	assert.NotContains(t, leadData, "last_contacted")
}

func TestLeadUpdatedOmitsUntouchedFields(t *testing.T) {
	email := "new@acme.com"
	engaged := true
	when := time.Now()
	update := entity.LeadUpdate{Email: &email, Engaged: &engaged, LastContacted: &when}

	e := NewLeadUpdated(&entity.Lead{ID: "lead-1", Name: "Ana Souza"}, update, actor)

	assert.Equal(t, map[string]any{
		"email":   "new@acme.com",
		"engaged": true,
	}, e.UpdatedData)
}

func TestLeadDeletedCarriesNoSnapshot(t *testing.T) {
	e := NewLeadDeleted(&entity.Lead{ID: "lead-9", Name: "Bruno Lima"}, actor)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(e.JSON()), &payload))

	assert.Equal(t, "lead_deleted", payload["event"])
	assert.Equal(t, "lead-9", payload["lead_id"])
	assert.NotContains(t, payload, "lead_data")
	assert.NotContains(t, payload, "updated_data")
	assert.Equal(t, "Jane Doe deleted lead Bruno Lima", payload["message"])
}
