package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const (
	MaxNameLength          = 255
	MaxEstimatedSaleAmount = 1000000
)

const (
	msgNameRequired     = "Name is required."
	msgNameTooLong      = "Name must be less than or equal to 255 characters."
	msgEmailRequired    = "Email is required."
	msgEmailInvalid     = "Email must be a valid email address."
	msgStatusRequired   = "Status is required."
	msgStatusInvalid    = "Status must be one of 'PROSPECT', 'ACTIVE', or 'UNQUALIFIED'."
	msgAmountRequired   = "Estimated Sale Amount is required."
	msgAmountOutOfRange = "Estimated Sale Amount must be a positive value less than or equal to 1,000,000."

	MsgValidationFailed = "Validation failed."
	MsgLeadNotFound     = "Lead not found"
	MsgValidationError  = "Validation error"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,4}$`)

type ValidationError struct {
	Field   string `json:"key,omitempty"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult is the outcome of a validation step. Code is the HTTP status
// to answer with when Valid is false; zero leaves the choice to the caller.
type ValidationResult struct {
	Valid   bool
	Code    int
	Message string
	Errors  []ValidationError
}

func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

type LeadFinder interface {
	FindByID(ctx context.Context, id int64) (*entity.Lead, error)
}

func validateName(name string) string {
	if name == "" {
		return msgNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return msgNameTooLong
	}
	return ""
}

func validateEmail(email string) string {
	if email == "" {
		return msgEmailRequired
	}
	if !emailRegex.MatchString(email) {
		return msgEmailInvalid
	}
	return ""
}

func validateStatus(status string) string {
	if status == "" {
		return msgStatusRequired
	}
	if !entity.LeadStatus(status).IsValid() {
		return msgStatusInvalid
	}
	return ""
}

func validateEstimatedSaleAmount(amount any) string {
	if amount == nil {
		return msgAmountRequired
	}
	value, err := entity.ParseNumber(amount)
	if err != nil || value < 0 || value > MaxEstimatedSaleAmount {
		return msgAmountOutOfRange
	}
	return ""
}

type fieldCheck struct {
	key   string
	check func() string
}

// leadFieldChecks fixes the order in which field errors are reported.
func leadFieldChecks(input LeadInput) []fieldCheck {
	return []fieldCheck{
		{"name", func() string { return validateName(input.Name) }},
		{"email", func() string { return validateEmail(input.Email) }},
		{"status", func() string { return validateStatus(input.Status) }},
		{"estimatedSaleAmount", func() string { return validateEstimatedSaleAmount(input.EstimatedSaleAmount) }},
	}
}

func ValidateLeadData(input LeadInput) ValidationResult {
	var errs []ValidationError

	for _, field := range leadFieldChecks(input) {
		if msg := field.check(); msg != "" {
			errs = append(errs, ValidationError{Field: field.key, Message: msg})
		}
	}

	if len(errs) > 0 {
		return ValidationResult{
			Valid:   false,
			Code:    http.StatusBadRequest,
			Message: MsgValidationFailed,
			Errors:  errs,
		}
	}
	return Valid()
}

func ParseLeadID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid lead id %q: %w", raw, err)
	}
	return id, nil
}

func ValidateLeadExistence(ctx context.Context, rawID string, finder LeadFinder) ValidationResult {
	id, err := ParseLeadID(rawID)
	if err != nil {
		return ValidationResult{Valid: false, Code: http.StatusBadRequest, Message: MsgValidationError}
	}

	lead, err := finder.FindByID(ctx, id)
	if errors.Is(err, entity.ErrLeadNotFound) || (err == nil && lead == nil) {
		return ValidationResult{Valid: false, Code: http.StatusNotFound, Message: MsgLeadNotFound}
	}
	if err != nil {
		return ValidationResult{Valid: false, Code: http.StatusBadRequest, Message: MsgValidationError}
	}
	return Valid()
}

// ValidateLeadUpdate checks existence first and only validates the payload of
// a lead that exists.
func ValidateLeadUpdate(ctx context.Context, rawID string, input LeadInput, finder LeadFinder) ValidationResult {
	if result := ValidateLeadExistence(ctx, rawID, finder); !result.Valid {
		return result
	}
	return ValidateLeadData(input)
}
