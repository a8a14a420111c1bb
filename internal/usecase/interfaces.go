package usecase

import (
	"context"

	"github.com/xavierca1/ligue-leads/internal/infra/queue"
)

type LeadEventPublisher interface {
	PublishLeadEvent(ctx context.Context, event queue.LeadEvent) error
}
