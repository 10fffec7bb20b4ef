package entity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Company       string     `json:"company,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	Stage         string     `json:"stage"` // free-form label: "New", "Qualified", etc.
	Engaged       bool       `json:"engaged"`
	LastContacted *time.Time `json:"last_contacted,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// LeadCreate carries the fields accepted when creating a lead.
type LeadCreate struct {
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Company       string     `json:"company"`
	Phone         string     `json:"phone"`
	Stage         string     `json:"stage"`
	Engaged       *bool      `json:"engaged"`
	LastContacted *time.Time `json:"last_contacted"`
}

// LeadUpdate supports partial updates: nil means "leave as is".
type LeadUpdate struct {
	Name          *string    `json:"name"`
	Email         *string    `json:"email"`
	Company       *string    `json:"company"`
	Phone         *string    `json:"phone"`
	Stage         *string    `json:"stage"`
	Engaged       *bool      `json:"engaged"`
	LastContacted *time.Time `json:"last_contacted"`
}

// LeadFilters is the decoded `filters` query parameter. Values arrive as
// strings from the frontend; empty means "not supplied".
type LeadFilters struct {
	Stage          string `json:"stage"`
	Engaged        string `json:"engaged"`
	CreatedAtStart string `json:"createdAtStart"`
	CreatedAtEnd   string `json:"createdAtEnd"`
	SortField      string `json:"sortField"`
	SortOrder      string `json:"sortOrder"`
}

// ListParams bundles pagination, free-text search and filters for listing.
type ListParams struct {
	Skip    int
	Limit   int
	Search  string
	Filters *LeadFilters
}

// LeadPage is a bounded page plus the total count ignoring the bounds.
type LeadPage struct {
	Items []*Lead `json:"items"`
	Total int     `json:"total"`
}

// Factory
func NewLead(in LeadCreate) (*Lead, error) {
	lead := &Lead{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Email:         in.Email,
		Company:       in.Company,
		Phone:         in.Phone,
		Stage:         in.Stage,
		LastContacted: in.LastContacted,
	}

	if lead.Stage == "" {
		lead.Stage = "New"
	}
	if in.Engaged != nil {
		lead.Engaged = *in.Engaged
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}

	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if l.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	return nil
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	List(ctx context.Context, params ListParams) (*LeadPage, error)
	GetByID(ctx context.Context, id string) (*Lead, error)
	Update(ctx context.Context, id string, update LeadUpdate) (*Lead, error)
	Delete(ctx context.Context, id string) (*Lead, error)
	ListAll(ctx context.Context) ([]*Lead, error)
}
