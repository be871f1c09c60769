package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Validator issues one validation round trip. Implementations must translate
// every failure into a *ScanError; callers never see transport details.
type Validator interface {
	Validate(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError)
}

// Client talks to the check-in service's validate endpoint. It carries no
// state between scans: every validation is a fresh round trip so the server
// stays the single authority across multiple scanner devices.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

const defaultRequestTimeout = 10 * time.Second

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
	}
}

type validateRequest struct {
	TicketID uint `json:"ticket_id"`
	OwnerID  uint `json:"owner_id"`
}

type validateResponse struct {
	Ticket struct {
		ID      uint `json:"id"`
		EventID uint `json:"event_id"`
		OwnerID uint `json:"owner_id"`
		Event   *struct {
			Name string `json:"name"`
		} `json:"event"`
	} `json:"ticket"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *Client) Validate(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
	body, err := json.Marshal(validateRequest{TicketID: ticketID, OwnerID: ownerID})
	if err != nil {
		return nil, &ScanError{Kind: KindUnknown, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/tickets/validate", bytes.NewReader(body))
	if err != nil {
		return nil, &ScanError{Kind: KindUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ScanError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		var ok validateResponse
		if err := json.NewDecoder(resp.Body).Decode(&ok); err != nil {
			return nil, &ScanError{Kind: KindUnknown, Err: fmt.Errorf("decode response: %w", err)}
		}
		ticket := &CheckedInTicket{
			ID:      ok.Ticket.ID,
			EventID: ok.Ticket.EventID,
			OwnerID: ok.Ticket.OwnerID,
		}
		if ok.Ticket.Event != nil {
			ticket.EventName = ok.Ticket.Event.Name
		}
		return ticket, nil
	}

	var fail errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&fail); err != nil {
		return nil, &ScanError{
			Kind:    KindUnknown,
			Message: fmt.Sprintf("server returned %d with unreadable body", resp.StatusCode),
		}
	}

	return nil, &ScanError{Kind: kindForCode(fail.Code), Message: fail.Message}
}

// kindForCode maps the server's error discriminator to the client taxonomy.
// This is the only place wire codes are interpreted.
func kindForCode(code string) ErrorKind {
	switch code {
	case "already_entered":
		return KindAlreadyEntered
	case "ticket_not_found":
		return KindNotFound
	default:
		return KindUnknown
	}
}
