package service

import (
	"context"
	"errors"
	"time"

	"github.com/minq3010/ticket-checkin/internal/models"
	"github.com/minq3010/ticket-checkin/internal/repository"
	"github.com/minq3010/ticket-checkin/pkg/rabbitmq"
	"gorm.io/gorm"
)

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrAlreadyEntered    = errors.New("ticket has already entered")
	ErrTicketAlreadyUsed = errors.New("ticket has already been used for entry")
)

type TicketService interface {
	Purchase(ctx context.Context, eventID, ownerID uint) (*models.Ticket, error)
	GetTicket(ctx context.Context, id uint) (*models.Ticket, error)
	ListTickets(ctx context.Context, ownerID uint) ([]models.Ticket, error)
	Validate(ctx context.Context, ticketID, ownerID uint) (*models.Ticket, error)
	DeleteTicket(ctx context.Context, id uint) error
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	eventRepo  repository.EventRepository
	publisher  *rabbitmq.Publisher
}

func NewTicketService(ticketRepo repository.TicketRepository, eventRepo repository.EventRepository, publisher *rabbitmq.Publisher) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		publisher:  publisher,
	}
}

// Purchase creates an unused ticket. Payment settlement happens upstream;
// by the time this is called the gateway has confirmed the charge.
func (s *ticketService) Purchase(ctx context.Context, eventID, ownerID uint) (*models.Ticket, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}

	ticket := &models.Ticket{
		EventID: event.ID,
		OwnerID: ownerID,
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}
	ticket.Event = event
	return ticket, nil
}

func (s *ticketService) GetTicket(ctx context.Context, id uint) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *ticketService) ListTickets(ctx context.Context, ownerID uint) ([]models.Ticket, error) {
	return s.ticketRepo.FindByOwner(ctx, ownerID)
}

// Validate drives the Unused -> Entered transition. Of N concurrent calls
// for the same ticket exactly one succeeds; the rest observe Entered and get
// ErrAlreadyEntered. An owner mismatch is reported as ErrTicketNotFound so a
// guessed ticket id leaks nothing about real ownership.
func (s *ticketService) Validate(ctx context.Context, ticketID, ownerID uint) (*models.Ticket, error) {
	var result *models.Ticket

	err := s.ticketRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the ticket row — serializes concurrent scans of the same code
		ticket, err := s.ticketRepo.FindByIDForUpdate(ctx, tx, ticketID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}

		if ticket.OwnerID != ownerID {
			return ErrTicketNotFound
		}

		if ticket.Entered {
			return ErrAlreadyEntered
		}

		now := time.Now()
		affected, err := s.ticketRepo.MarkEntered(ctx, tx, ticket.ID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			// Raced with another scanner between read and write.
			return ErrAlreadyEntered
		}

		ticket.Entered = true
		ticket.EnteredAt = &now
		ticket.UpdatedAt = now
		result = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Feed for the statistics dashboards; check-in itself is already durable.
	if s.publisher != nil {
		_ = s.publisher.Publish("ticket.entered", result)
	}

	return result, nil
}

// DeleteTicket removes an unentered ticket (owner-initiated, refund handled
// out of band). A ticket that was used for entry stays on record.
func (s *ticketService) DeleteTicket(ctx context.Context, id uint) error {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketNotFound
		}
		return err
	}

	if ticket.Entered {
		return ErrTicketAlreadyUsed
	}

	return s.ticketRepo.Delete(ctx, id)
}
