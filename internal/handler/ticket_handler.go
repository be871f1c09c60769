package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/minq3010/ticket-checkin/internal/dto"
	"github.com/minq3010/ticket-checkin/internal/qr"
	"github.com/minq3010/ticket-checkin/internal/service"
)

type TicketHandler struct {
	svc service.TicketService
}

func NewTicketHandler(svc service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

func (h *TicketHandler) RegisterRoutes(e *echo.Echo) {
	tickets := e.Group("/api/v1/tickets")
	tickets.POST("", h.PurchaseTicket)
	tickets.GET("", h.ListTickets)
	tickets.GET("/:id", h.GetTicket)
	tickets.DELETE("/:id", h.DeleteTicket)
	tickets.POST("/validate", h.ValidateTicket)
}

// ValidateTicket is the scan-and-validate endpoint. The server is the sole
// authority on whether the pair matches a real, unentered ticket; scanning
// clients never decide this locally.
func (h *TicketHandler) ValidateTicket(c echo.Context) error {
	var req dto.ValidateTicketRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.TicketID == 0 || req.OwnerID == 0 {
		return badRequest("ticket_id and owner_id are required")
	}

	ticket, err := h.svc.Validate(c.Request().Context(), req.TicketID, req.OwnerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return apiError(http.StatusNotFound, dto.CodeTicketNotFound, err.Error())
		case errors.Is(err, service.ErrAlreadyEntered):
			return apiError(http.StatusConflict, dto.CodeAlreadyEntered, err.Error())
		default:
			return apiError(http.StatusInternalServerError, dto.CodeInternal, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ValidateResponse{Ticket: dto.ToTicketResponse(ticket)})
}

func (h *TicketHandler) PurchaseTicket(c echo.Context) error {
	var req dto.PurchaseTicketRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.EventID == 0 || req.OwnerID == 0 {
		return badRequest("event_id and owner_id are required")
	}

	ticket, err := h.svc.Purchase(c.Request().Context(), req.EventID, req.OwnerID)
	if err != nil {
		if errors.Is(err, service.ErrEventNotFound) {
			return apiError(http.StatusNotFound, dto.CodeEventNotFound, err.Error())
		}
		return apiError(http.StatusInternalServerError, dto.CodeInternal, err.Error())
	}

	return c.JSON(http.StatusCreated, dto.ToTicketResponse(ticket))
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest("invalid ticket id")
	}

	ticket, err := h.svc.GetTicket(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			return apiError(http.StatusNotFound, dto.CodeTicketNotFound, err.Error())
		}
		return apiError(http.StatusInternalServerError, dto.CodeInternal, err.Error())
	}

	qrcode, err := qr.ImageBase64(ticket.ID, ticket.OwnerID)
	if err != nil {
		return apiError(http.StatusInternalServerError, dto.CodeInternal, err.Error())
	}

	return c.JSON(http.StatusOK, dto.TicketDetailResponse{
		Ticket: dto.ToTicketResponse(ticket),
		QRCode: qrcode,
	})
}

func (h *TicketHandler) ListTickets(c echo.Context) error {
	ownerID, err := strconv.ParseUint(c.QueryParam("owner_id"), 10, 64)
	if err != nil || ownerID == 0 {
		return badRequest("owner_id query parameter is required")
	}

	tickets, err := h.svc.ListTickets(c.Request().Context(), uint(ownerID))
	if err != nil {
		return apiError(http.StatusInternalServerError, dto.CodeInternal, err.Error())
	}

	resp := make([]dto.TicketResponse, len(tickets))
	for i, t := range tickets {
		resp[i] = dto.ToTicketResponse(&t)
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *TicketHandler) DeleteTicket(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest("invalid ticket id")
	}

	if err := h.svc.DeleteTicket(c.Request().Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			return apiError(http.StatusNotFound, dto.CodeTicketNotFound, err.Error())
		case errors.Is(err, service.ErrTicketAlreadyUsed):
			return apiError(http.StatusConflict, dto.CodeTicketAlreadyUsed, err.Error())
		default:
			return apiError(http.StatusInternalServerError, dto.CodeInternal, err.Error())
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func apiError(status int, code, message string) *echo.HTTPError {
	return echo.NewHTTPError(status, dto.ErrorResponse{Code: code, Message: message})
}

func badRequest(message string) *echo.HTTPError {
	return apiError(http.StatusBadRequest, dto.CodeInvalidRequest, message)
}
