//go:build integration

package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/minq3010/ticket-checkin/internal/models"
	"github.com/minq3010/ticket-checkin/internal/qr"
	"github.com/minq3010/ticket-checkin/internal/repository"
	"github.com/minq3010/ticket-checkin/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestEvent(t *testing.T, id uint, name string) *models.Event {
	t.Helper()
	event := &models.Event{
		ID:    id,
		Name:  name,
		Price: 150000,
		Date:  time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, testDB.Create(event).Error)
	return event
}

func createTestTicket(t *testing.T, eventID, ownerID uint) *models.Ticket {
	t.Helper()
	ticket := &models.Ticket{EventID: eventID, OwnerID: ownerID}
	require.NoError(t, testDB.Create(ticket).Error)
	return ticket
}

func newTicketService() service.TicketService {
	ticketRepo := repository.NewTicketRepository(testDB)
	eventRepo := repository.NewEventRepository(testDB)
	return service.NewTicketService(ticketRepo, eventRepo, nil)
}

// Two scanner devices read the same QR at the same moment → exactly one
// admission, the other rejected as already entered.
func TestConcurrentValidation_AtMostOnce(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "Go Conference")
	ticket := createTestTicket(t, 1, 9)

	svc := newTicketService()

	const scanners = 2
	results := make([]error, scanners)
	var wg sync.WaitGroup
	wg.Add(scanners)
	for i := 0; i < scanners; i++ {
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Validate(context.Background(), ticket.ID, 9)
		}(i)
	}
	wg.Wait()

	successes, alreadyEntered := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case err == service.ErrAlreadyEntered:
			alreadyEntered++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one scan may succeed")
	assert.Equal(t, scanners-1, alreadyEntered)

	var stored models.Ticket
	require.NoError(t, testDB.First(&stored, ticket.ID).Error)
	assert.True(t, stored.Entered)
	assert.NotNil(t, stored.EnteredAt)
}

// A storm of scans for the same ticket still admits exactly once.
func TestConcurrentValidation_ManyScanners(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "Go Conference")
	ticket := createTestTicket(t, 1, 9)

	svc := newTicketService()

	const scanners = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0
	wg.Add(scanners)
	for i := 0; i < scanners; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Validate(context.Background(), ticket.ID, 9); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestValidation_IdempotentRejection(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "Go Conference")
	ticket := createTestTicket(t, 1, 9)

	svc := newTicketService()

	_, err := svc.Validate(context.Background(), ticket.ID, 9)
	require.NoError(t, err)

	// Every retry after the transition is rejected the same way.
	for i := 0; i < 5; i++ {
		_, err := svc.Validate(context.Background(), ticket.ID, 9)
		assert.ErrorIs(t, err, service.ErrAlreadyEntered)
	}
}

func TestValidation_WrongOwnerLeavesTicketUnused(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "Go Conference")
	ticket := createTestTicket(t, 1, 9)

	svc := newTicketService()

	_, err := svc.Validate(context.Background(), ticket.ID, 10)
	assert.ErrorIs(t, err, service.ErrTicketNotFound)

	var stored models.Ticket
	require.NoError(t, testDB.First(&stored, ticket.ID).Error)
	assert.False(t, stored.Entered, "owner mismatch must not flip the ticket")

	// The rightful owner can still enter.
	_, err = svc.Validate(context.Background(), ticket.ID, 9)
	assert.NoError(t, err)
}

// Full pipeline from QR text to the durable transition.
func TestValidation_EndToEndFromScanPayload(t *testing.T) {
	cleanTables()
	createTestEvent(t, 1, "Go Conference")
	ticket := createTestTicket(t, 1, 9)

	svc := newTicketService()

	payload, err := qr.Decode(qr.Encode(ticket.ID, ticket.OwnerID))
	require.NoError(t, err)

	validated, err := svc.Validate(context.Background(), payload.TicketID, payload.OwnerID)
	require.NoError(t, err)
	assert.True(t, validated.Entered)

	_, err = svc.Validate(context.Background(), payload.TicketID, payload.OwnerID)
	assert.ErrorIs(t, err, service.ErrAlreadyEntered)
}

func TestValidation_UnknownTicket(t *testing.T) {
	cleanTables()
	svc := newTicketService()

	_, err := svc.Validate(context.Background(), 424242, 9)
	assert.ErrorIs(t, err, service.ErrTicketNotFound)
}
