package usecase

import (
	"fmt"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

// LeadInput is the client payload for create and update. EstimatedSaleAmount
// keeps the decoded JSON value (json.Number, string, nil...) so validation can
// tell a missing amount from an invalid one.
type LeadInput struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Status              string `json:"status"`
	EstimatedSaleAmount any    `json:"estimatedSaleAmount"`
}

// ToLead converts a validated input into a lead with derived fields filled in.
func (in LeadInput) ToLead() (*entity.Lead, error) {
	amount, err := entity.RoundDecimal(in.EstimatedSaleAmount, entity.DefaultDecimalPlaces)
	if err != nil {
		return nil, fmt.Errorf("estimatedSaleAmount: %w", err)
	}
	return entity.NewLead(in.Name, in.Email, entity.LeadStatus(in.Status), amount), nil
}

type ListLeadsOutput struct {
	Leads []entity.Lead `json:"leads"`
}

type CreateLeadOutput struct {
	Lead *entity.Lead `json:"lead"`
}

type ReadLeadOutput struct {
	LeadID int64        `json:"leadId"`
	Lead   *entity.Lead `json:"lead"`
}

type UpdateLeadOutput struct {
	LeadID      int64        `json:"leadId"`
	UpdatedLead *entity.Lead `json:"updatedLead"`
}

type DeleteLeadOutput struct {
	LeadID      int64        `json:"leadId"`
	DeletedLead *entity.Lead `json:"deletedLead"`
}
