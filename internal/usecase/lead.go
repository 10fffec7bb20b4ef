package usecase

import (
	"context"
	"log"

	"github.com/xavierca1/artisan-crm/internal/entity"
	"github.com/xavierca1/artisan-crm/internal/event"
)

// NotifierInterface is the in-process observer channel (websocket hub).
type NotifierInterface interface {
	Publish(msg string)
}

// EventMirrorInterface forwards events to the durable queue for downstream
// consumers. Optional: nil when no broker is configured.
type EventMirrorInterface interface {
	PublishLeadEvent(ctx context.Context, e event.LeadEvent) error
}

// LeadUseCase orchestrates persistence and event fan-out. Events are
// published only after the storage commit succeeded, and a failed publish
// never fails the mutation.
type LeadUseCase struct {
	Repo     entity.LeadRepositoryInterface
	Notifier NotifierInterface
	Mirror   EventMirrorInterface
}

func NewLeadUseCase(repo entity.LeadRepositoryInterface, notifier NotifierInterface, mirror EventMirrorInterface) *LeadUseCase {
	return &LeadUseCase{
		Repo:     repo,
		Notifier: notifier,
		Mirror:   mirror,
	}
}

func (uc *LeadUseCase) Create(ctx context.Context, in entity.LeadCreate, actor event.Actor) (*entity.Lead, error) {
	lead, err := entity.NewLead(in)
	if err != nil {
		return nil, err
	}

	if err := uc.Repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	uc.publish(ctx, event.NewLeadCreated(lead, actor))
	return lead, nil
}

func (uc *LeadUseCase) List(ctx context.Context, params entity.ListParams) (*entity.LeadPage, error) {
	return uc.Repo.List(ctx, params)
}

func (uc *LeadUseCase) Get(ctx context.Context, id string) (*entity.Lead, error) {
	return uc.Repo.GetByID(ctx, id)
}

func (uc *LeadUseCase) Update(ctx context.Context, id string, update entity.LeadUpdate, actor event.Actor) (*entity.Lead, error) {
	lead, err := uc.Repo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, event.NewLeadUpdated(lead, update, actor))
	return lead, nil
}

func (uc *LeadUseCase) Delete(ctx context.Context, id string, actor event.Actor) (*entity.Lead, error) {
	lead, err := uc.Repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, event.NewLeadDeleted(lead, actor))
	return lead, nil
}

// ExportAll returns the full unfiltered dump for the CSV export.
func (uc *LeadUseCase) ExportAll(ctx context.Context) ([]*entity.Lead, error) {
	return uc.Repo.ListAll(ctx)
}

func (uc *LeadUseCase) publish(ctx context.Context, e event.LeadEvent) {
	uc.Notifier.Publish(e.JSON())

	if uc.Mirror != nil {
		if err := uc.Mirror.PublishLeadEvent(ctx, e); err != nil {
			log.Printf("lead usecase: event mirror publish failed: %v", err)
		}
	}
}
