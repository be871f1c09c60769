package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock Validator ---

type mockValidator struct {
	mu         sync.Mutex
	calls      int
	validateFn func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError)
}

func (m *mockValidator) Validate(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.validateFn(ctx, ticketID, ownerID)
}

func (m *mockValidator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Mock Feedback ---

type mockFeedback struct {
	settled chan Result
}

func newMockFeedback() *mockFeedback {
	return &mockFeedback{settled: make(chan Result, 16)}
}

func (f *mockFeedback) ScanAccepted(raw string) {}

func (f *mockFeedback) ScanSettled(res Result) {
	f.settled <- res
}

func (f *mockFeedback) waitSettled(t *testing.T) Result {
	t.Helper()
	select {
	case res := <-f.settled:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan to settle")
		return Result{}
	}
}

// --- Tests ---

func TestDebouncer_GateAcceptsExactlyOneWhileBusy(t *testing.T) {
	release := make(chan struct{})
	validator := &mockValidator{
		validateFn: func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
			<-release
			return &CheckedInTicket{ID: ticketID, OwnerID: ownerID}, nil
		},
	}
	feedback := newMockFeedback()
	deb := NewDebouncer(validator, feedback)

	// Camera drivers fire repeatedly while a code stays in frame.
	accepted := 0
	for i := 0; i < 10; i++ {
		if deb.OnScan("ticket:501,owner:9") {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted, "only the first callback may pass the gate")

	close(release)
	res := feedback.waitSettled(t)
	require.True(t, res.OK())
	assert.Equal(t, 1, validator.callCount(), "exactly one validation request issued")
}

func TestDebouncer_ManualRearm(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
			return &CheckedInTicket{ID: ticketID}, nil
		},
	}
	feedback := newMockFeedback()
	deb := NewDebouncer(validator, feedback, WithPolicy(RearmManual))

	require.True(t, deb.OnScan("ticket:1,owner:2"))
	feedback.waitSettled(t)

	// Gate stays closed until the operator acknowledges.
	assert.False(t, deb.OnScan("ticket:3,owner:4"))

	deb.Rearm()
	require.True(t, deb.OnScan("ticket:3,owner:4"))
	feedback.waitSettled(t)
	assert.Equal(t, 2, validator.callCount())
}

func TestDebouncer_AutoRearmAfterQuietInterval(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
			return &CheckedInTicket{ID: ticketID}, nil
		},
	}
	feedback := newMockFeedback()
	deb := NewDebouncer(validator, feedback, WithPolicy(RearmAuto))

	var quiet time.Duration
	deb.afterFunc = func(d time.Duration, f func()) *time.Timer {
		quiet = d
		f() // fire immediately so the test stays fast
		return nil
	}

	require.True(t, deb.OnScan("ticket:1,owner:2"))
	feedback.waitSettled(t)

	assert.Equal(t, defaultQuietInterval, quiet)
	require.True(t, deb.OnScan("ticket:3,owner:4"), "gate re-armed without operator action")
	feedback.waitSettled(t)
}

func TestDebouncer_MalformedPayloadNeverReachesValidator(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
			t.Error("validator must not be called for a malformed payload")
			return nil, nil
		},
	}
	feedback := newMockFeedback()
	deb := NewDebouncer(validator, feedback)

	require.True(t, deb.OnScan("not-a-ticket-code"))
	res := feedback.waitSettled(t)

	require.False(t, res.OK())
	assert.Equal(t, KindMalformedPayload, res.Err.Kind)
	assert.Equal(t, "not-a-ticket-code", res.Raw)
	assert.Equal(t, 0, validator.callCount())
}

func TestDebouncer_ValidationTimeoutSurfacesTransport(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
			// Simulate a request that never resolves on its own.
			<-ctx.Done()
			return nil, &ScanError{Kind: KindUnknown, Err: ctx.Err()}
		},
	}
	feedback := newMockFeedback()
	deb := NewDebouncer(validator, feedback,
		WithPolicy(RearmAuto),
		WithValidateTimeout(20*time.Millisecond),
	)
	deb.afterFunc = func(d time.Duration, f func()) *time.Timer {
		f()
		return nil
	}

	require.True(t, deb.OnScan("ticket:1,owner:2"))
	res := feedback.waitSettled(t)

	require.False(t, res.OK())
	assert.Equal(t, KindTransport, res.Err.Kind, "a hung validation must not wedge the gate")

	// The gate came back.
	assert.True(t, deb.OnScan("ticket:1,owner:2"))
	feedback.waitSettled(t)
}

func TestDebouncer_ErrorOutcomeStillRearms(t *testing.T) {
	validator := &mockValidator{
		validateFn: func(ctx context.Context, ticketID, ownerID uint) (*CheckedInTicket, *ScanError) {
			return nil, &ScanError{Kind: KindAlreadyEntered, Message: "ticket has already entered"}
		},
	}
	feedback := newMockFeedback()
	deb := NewDebouncer(validator, feedback, WithPolicy(RearmManual))

	require.True(t, deb.OnScan("ticket:501,owner:9"))
	res := feedback.waitSettled(t)
	require.False(t, res.OK())
	assert.Equal(t, KindAlreadyEntered, res.Err.Kind)

	deb.Rearm()
	assert.True(t, deb.OnScan("ticket:501,owner:9"))
	feedback.waitSettled(t)
}
