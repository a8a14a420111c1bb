package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xavierca1/ligue-leads/internal/entity"
)

const DefaultBaseURL = "https://liguemedicina.kommo.com/api/v4"

var (
	ErrNotConfigured   = errors.New("kommo: api token not configured")
	errContactNotFound = errors.New("kommo: contact not found")
)

type Client struct {
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(apiToken, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiToken:   apiToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// SyncLead mirrors a stored lead into the CRM and returns the CRM lead id.
func (c *Client) SyncLead(ctx context.Context, lead entity.Lead) (int, error) {
	return c.CreateLead(ctx, CreateLeadInput{
		Name:         fmt.Sprintf("%s - %s", lead.Name, lead.Status),
		ContactName:  lead.Name,
		ContactEmail: lead.Email,
		Price:        int(math.Round(lead.EstimatedSaleAmount)),
		Tags:         []string{"lead_" + strings.ToLower(string(lead.Status))},
	})
}

func (c *Client) CreateLead(ctx context.Context, input CreateLeadInput) (int, error) {
	if c.apiToken == "" {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("find or create contact: %w", err)
	}

	tags := make([]map[string]any, 0, len(input.Tags))
	for _, tag := range input.Tags {
		tags = append(tags, map[string]any{"name": tag})
	}

	payload := []map[string]any{
		{
			"name":  input.Name,
			"price": input.Price,
			"_embedded": map[string]any{
				"tags":     tags,
				"contacts": []map[string]any{{"id": contactID}},
			},
		},
	}

	var result leadsResponse
	if err := c.do(ctx, http.MethodPost, "/leads", payload, &result); err != nil {
		return 0, fmt.Errorf("create lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, errors.New("create lead: empty response")
	}

	leadID := result.Embedded.Leads[0].ID
	c.logger.Info("kommo lead created", slog.Int("kommo_lead_id", leadID), slog.String("email", input.ContactEmail))
	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input CreateLeadInput) (int, error) {
	contactID, err := c.findContactByEmail(ctx, input.ContactEmail)
	if err == nil {
		return contactID, nil
	}
	if !errors.Is(err, errContactNotFound) {
		return 0, err
	}
	return c.createContact(ctx, input)
}

func (c *Client) findContactByEmail(ctx context.Context, email string) (int, error) {
	var result contactsResponse
	if err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(email), nil, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errContactNotFound
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) createContact(ctx context.Context, input CreateLeadInput) (int, error) {
	payload := []map[string]any{
		{
			"name": input.ContactName,
			"custom_fields_values": []map[string]any{
				{
					"field_code": "EMAIL",
					"values": []map[string]any{
						{"value": input.ContactEmail, "enum_code": "WORK"},
					},
				},
			},
		},
	}

	var result contactsResponse
	if err := c.do(ctx, http.MethodPost, "/contacts", payload, &result); err != nil {
		return 0, fmt.Errorf("create contact: %w", err)
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errors.New("create contact: empty response")
	}
	return result.Embedded.Contacts[0].ID, nil
}

// do sends a JSON request and decodes the body into out. Kommo answers a search
// without matches with 204 and no body.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	c.addAuthHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated:
		return fmt.Errorf("kommo %s %s: %d - %s", method, path, resp.StatusCode, string(body))
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiToken))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
}
