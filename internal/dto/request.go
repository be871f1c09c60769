package dto

type PurchaseTicketRequest struct {
	EventID uint `json:"event_id" validate:"required,gt=0"`
	OwnerID uint `json:"owner_id" validate:"required,gt=0"`
}

type ValidateTicketRequest struct {
	TicketID uint `json:"ticket_id" validate:"required,gt=0"`
	OwnerID  uint `json:"owner_id" validate:"required,gt=0"`
}
