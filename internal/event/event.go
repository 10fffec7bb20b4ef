package event

import (
	"encoding/json"
	"fmt"

	"github.com/xavierca1/artisan-crm/internal/entity"
)

const (
	LeadCreated = "lead_created"
	LeadUpdated = "lead_updated"
	LeadDeleted = "lead_deleted"
)

// Actor identifies who triggered a mutation (taken from the bearer token).
type Actor struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// LeadEvent is the wire payload pushed to observers after a mutation.
// Field names are part of the frontend contract, do not rename.
type LeadEvent struct {
	Event       string         `json:"event"`
	LeadID      string         `json:"lead_id"`
	LeadData    map[string]any `json:"lead_data,omitempty"`
	UpdatedData map[string]any `json:"updated_data,omitempty"`
	Source      int            `json:"source"`
	SourceName  string         `json:"sourceName"`
	Message     string         `json:"message"`
}

func (e LeadEvent) JSON() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// NewLeadCreated builds the creation event. last_contacted is deliberately
// withheld from the snapshot.
func NewLeadCreated(lead *entity.Lead, actor Actor) LeadEvent {
	return LeadEvent{
		Event:  LeadCreated,
		LeadID: lead.ID,
		LeadData: map[string]any{
			"name":    lead.Name,
			"email":   lead.Email,
			"company": lead.Company,
			"phone":   lead.Phone,
			"stage":   lead.Stage,
			"engaged": lead.Engaged,
		},
		Source:     actor.ID,
		SourceName: actor.Name,
		Message:    fmt.Sprintf("%s added a new lead: %s", actor.Name, lead.Name),
	}
}

// NewLeadUpdated builds the update event carrying only the changed fields,
// again without last_contacted.
func NewLeadUpdated(lead *entity.Lead, update entity.LeadUpdate, actor Actor) LeadEvent {
	changed := map[string]any{}
	if update.Name != nil {
		changed["name"] = *update.Name
	}
	if update.Email != nil {
		changed["email"] = *update.Email
	}
	if update.Company != nil {
		changed["company"] = *update.Company
	}
	if update.Phone != nil {
		changed["phone"] = *update.Phone
	}
	if update.Stage != nil {
		changed["stage"] = *update.Stage
	}
	if update.Engaged != nil {
		changed["engaged"] = *update.Engaged
	}

	return LeadEvent{
		Event:       LeadUpdated,
		LeadID:      lead.ID,
		UpdatedData: changed,
		Source:      actor.ID,
		SourceName:  actor.Name,
		Message:     fmt.Sprintf("%s updated lead %s", actor.Name, lead.Name),
	}
}

func NewLeadDeleted(lead *entity.Lead, actor Actor) LeadEvent {
	return LeadEvent{
		Event:      LeadDeleted,
		LeadID:     lead.ID,
		Source:     actor.ID,
		SourceName: actor.Name,
		Message:    fmt.Sprintf("%s deleted lead %s", actor.Name, lead.Name),
	}
}
