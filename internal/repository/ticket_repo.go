package repository

import (
	"context"
	"time"

	"github.com/minq3010/ticket-checkin/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id uint) (*models.Ticket, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Ticket, error)
	FindByOwner(ctx context.Context, ownerID uint) ([]models.Ticket, error)
	MarkEntered(ctx context.Context, tx *gorm.DB, id uint, at time.Time) (int64, error)
	Delete(ctx context.Context, id uint) error
	GetDB() *gorm.DB
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := r.db.WithContext(ctx).Preload("Event").First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

// FindByIDForUpdate acquires a row-level lock on the ticket within the given
// transaction, serializing concurrent validations of the same ticket.
func (r *ticketRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ticket, id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByOwner(ctx context.Context, ownerID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

// MarkEntered flips entered only when it is still false and reports the
// number of rows changed. The guard makes the transition a compare-and-swap
// even outside the row lock.
func (r *ticketRepository) MarkEntered(ctx context.Context, tx *gorm.DB, id uint, at time.Time) (int64, error) {
	result := tx.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ? AND entered = ?", id, false).
		Updates(map[string]any{"entered": true, "entered_at": at, "updated_at": at})
	return result.RowsAffected, result.Error
}

func (r *ticketRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Ticket{}, id).Error
}
