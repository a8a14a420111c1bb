package entity

import (
	"context"
	"errors"
	"time"
)

var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrLeadConstraintFail = errors.New("lead violates storage constraints")
)

type LeadStatus string

const (
	LeadStatusProspect    LeadStatus = "PROSPECT"
	LeadStatusActive      LeadStatus = "ACTIVE"
	LeadStatusUnqualified LeadStatus = "UNQUALIFIED"
)

// LeadStatuses lists the accepted statuses in declaration order.
var LeadStatuses = []LeadStatus{LeadStatusProspect, LeadStatusActive, LeadStatusUnqualified}

func (s LeadStatus) IsValid() bool {
	for _, status := range LeadStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Lead struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Status              LeadStatus `json:"status"`
	EstimatedSaleAmount float64    `json:"estimatedSaleAmount"`
	EstimatedCommission float64    `json:"estimatedCommission"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// NewLead builds a lead with the sale amount rounded and the commission derived from it.
func NewLead(name, email string, status LeadStatus, saleAmount float64) *Lead {
	lead := &Lead{
		Name:                name,
		Email:               email,
		Status:              status,
		EstimatedSaleAmount: saleAmount,
	}
	lead.Recalculate()
	return lead
}

// Recalculate keeps EstimatedCommission in sync with the amount and status.
// Every write path calls it before the lead reaches storage.
func (l *Lead) Recalculate() {
	l.EstimatedSaleAmount = roundTo(l.EstimatedSaleAmount, DefaultDecimalPlaces)
	l.EstimatedCommission = EstimatedCommission(l.EstimatedSaleAmount, l.Status)
}

type LeadRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*Lead, error)
	FindAll(ctx context.Context) ([]Lead, error)
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id int64) (*Lead, error)
}

// LeadSession is a repository bound to a single acquired storage connection.
// Close releases the connection and must be called on every exit path.
type LeadSession interface {
	LeadRepositoryInterface
	Close() error
}

type LeadStore interface {
	Open(ctx context.Context) (LeadSession, error)
}
