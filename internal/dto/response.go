package dto

import (
	"time"

	"github.com/minq3010/ticket-checkin/internal/models"
)

// Stable machine-readable discriminators shared with scanning clients.
// Clients branch on Code, never on Message text.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeTicketNotFound    = "ticket_not_found"
	CodeEventNotFound     = "event_not_found"
	CodeAlreadyEntered    = "already_entered"
	CodeTicketAlreadyUsed = "ticket_already_used"
	CodeInternal          = "internal_error"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TicketResponse struct {
	ID        uint           `json:"id"`
	EventID   uint           `json:"event_id"`
	OwnerID   uint           `json:"owner_id"`
	Entered   bool           `json:"entered"`
	EnteredAt *time.Time     `json:"entered_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	Event     *EventResponse `json:"event,omitempty"`
}

type EventResponse struct {
	ID       uint      `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
}

// TicketDetailResponse is what the ticket-owner screen renders: the ticket
// plus the QR image it presents at the gate, base64 PNG.
type TicketDetailResponse struct {
	Ticket TicketResponse `json:"ticket"`
	QRCode string         `json:"qrcode"`
}

type ValidateResponse struct {
	Ticket TicketResponse `json:"ticket"`
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		OwnerID:   t.OwnerID,
		Entered:   t.Entered,
		EnteredAt: t.EnteredAt,
		CreatedAt: t.CreatedAt,
	}
	if t.Event != nil {
		resp.Event = &EventResponse{
			ID:       t.Event.ID,
			Name:     t.Event.Name,
			Location: t.Event.Location,
			Price:    t.Event.Price,
			Date:     t.Event.Date,
		}
	}
	return resp
}
