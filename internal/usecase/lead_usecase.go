package usecase

import (
	"context"
	"log/slog"

	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

// LeadUseCase runs lead operations against a repository supplied per call, so
// the caller controls which storage session a request uses.
type LeadUseCase struct {
	Events LeadEventPublisher
	Logger *slog.Logger
}

func NewLeadUseCase(events LeadEventPublisher, logger *slog.Logger) *LeadUseCase {
	if events == nil {
		events = queue.NoopProducer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LeadUseCase{
		Events: events,
		Logger: logger,
	}
}

func (uc *LeadUseCase) List(ctx context.Context, repo entity.LeadRepositoryInterface) (*ListLeadsOutput, error) {
	leads, err := repo.FindAll(ctx)
	if err != nil {
		return nil, repositoryError("list leads", err)
	}
	if leads == nil {
		leads = []entity.Lead{}
	}
	return &ListLeadsOutput{Leads: leads}, nil
}

func (uc *LeadUseCase) Create(ctx context.Context, repo entity.LeadRepositoryInterface, input LeadInput) (*CreateLeadOutput, error) {
	lead, err := input.ToLead()
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidAmount, Message: "create lead: invalid sale amount", Err: err}
	}

	if err := repo.Create(ctx, lead); err != nil {
		return nil, repositoryError("create lead", err)
	}

	uc.publish(ctx, queue.EventLeadCreated, *lead)
	return &CreateLeadOutput{Lead: lead}, nil
}

func (uc *LeadUseCase) Read(ctx context.Context, repo entity.LeadRepositoryInterface, id int64) (*ReadLeadOutput, error) {
	lead, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, repositoryError("read lead", err)
	}
	return &ReadLeadOutput{LeadID: id, Lead: lead}, nil
}

// Update replaces the four client fields of the lead and recomputes its commission.
func (uc *LeadUseCase) Update(ctx context.Context, repo entity.LeadRepositoryInterface, id int64, input LeadInput) (*UpdateLeadOutput, error) {
	lead, err := input.ToLead()
	if err != nil {
		return nil, &DomainError{Code: CodeInvalidAmount, Message: "update lead: invalid sale amount", Err: err}
	}
	lead.ID = id

	if err := repo.Update(ctx, lead); err != nil {
		return nil, repositoryError("update lead", err)
	}

	uc.publish(ctx, queue.EventLeadUpdated, *lead)
	return &UpdateLeadOutput{LeadID: id, UpdatedLead: lead}, nil
}

func (uc *LeadUseCase) Delete(ctx context.Context, repo entity.LeadRepositoryInterface, id int64) (*DeleteLeadOutput, error) {
	deleted, err := repo.Delete(ctx, id)
	if err != nil {
		return nil, repositoryError("delete lead", err)
	}

	uc.publish(ctx, queue.EventLeadDeleted, *deleted)
	return &DeleteLeadOutput{LeadID: id, DeletedLead: deleted}, nil
}

// publish never fails the operation: the write is already committed.
func (uc *LeadUseCase) publish(ctx context.Context, eventType string, lead entity.Lead) {
	event := queue.NewLeadEvent(eventType, lead)
	if err := uc.Events.PublishLeadEvent(ctx, event); err != nil {
		uc.Logger.Error("lead event not published",
			slog.String("event_type", eventType),
			slog.Int64("lead_id", lead.ID),
			slog.String("error", err.Error()),
		)
	}
}
