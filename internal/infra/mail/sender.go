package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

var leadCreatedTemplate = template.Must(template.ParseFS(templateFS, "templates/lead_created.html"))

var ErrNotConfigured = errors.New("mail: sender not configured")

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// NotifyLeadCreated mails the sales inbox about a newly stored lead.
func (s *EmailSender) NotifyLeadCreated(ctx context.Context, lead entity.Lead) error {
	if s.Host == "" || s.To == "" {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderLeadCreated(lead)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("New lead: %s (%s)", lead.Name, lead.Status))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send lead notification: %w", err)
	}
	return nil
}

func renderLeadCreated(lead entity.Lead) (string, error) {
	data := LeadCreatedEmailData{
		Name:                lead.Name,
		Email:               lead.Email,
		Status:              string(lead.Status),
		EstimatedSaleAmount: strconv.FormatFloat(lead.EstimatedSaleAmount, 'f', entity.DefaultDecimalPlaces, 64),
		EstimatedCommission: strconv.FormatFloat(lead.EstimatedCommission, 'f', entity.DefaultDecimalPlaces, 64),
	}

	var body bytes.Buffer
	if err := leadCreatedTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("render lead notification: %w", err)
	}
	return body.String(), nil
}
