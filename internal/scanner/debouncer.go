package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/minq3010/ticket-checkin/internal/qr"
)

// RearmPolicy decides who re-arms the gate after a scan settles.
type RearmPolicy int

const (
	// RearmManual keeps the gate Busy until the caller invokes Rearm(),
	// for flows that pause on every result (alert + acknowledgment).
	RearmManual RearmPolicy = iota
	// RearmAuto re-arms after the quiet interval, for continuous scanning.
	RearmAuto
)

type state int

const (
	stateArmed state = iota
	stateBusy
)

const (
	// Absorbs residual camera-driver repeats of the same frame.
	defaultQuietInterval = 200 * time.Millisecond
	// A validation that never resolves must not wedge the gate.
	defaultValidateTimeout = 10 * time.Second
)

// Feedback receives the tactile/visual cue for each terminal outcome, so the
// operator knows whether to re-present the ticket or wave the next attendee
// through. Called before the gate re-arms.
type Feedback interface {
	ScanAccepted(raw string)
	ScanSettled(res Result)
}

// Debouncer turns the continuous raw callback stream from a camera scanner
// into one validation attempt per physical presentation of a code. The
// Armed/Busy flag is the only client-side mutable state; the gate check
// happens before any asynchronous work is scheduled.
type Debouncer struct {
	mu    sync.Mutex
	state state

	validator Validator
	feedback  Feedback
	policy    RearmPolicy
	quiet     time.Duration
	timeout   time.Duration

	// test seam
	afterFunc func(time.Duration, func()) *time.Timer
}

type DebouncerOption func(*Debouncer)

func WithPolicy(p RearmPolicy) DebouncerOption {
	return func(d *Debouncer) { d.policy = p }
}

func WithQuietInterval(quiet time.Duration) DebouncerOption {
	return func(d *Debouncer) { d.quiet = quiet }
}

func WithValidateTimeout(timeout time.Duration) DebouncerOption {
	return func(d *Debouncer) { d.timeout = timeout }
}

func NewDebouncer(validator Validator, feedback Feedback, opts ...DebouncerOption) *Debouncer {
	d := &Debouncer{
		state:     stateArmed,
		validator: validator,
		feedback:  feedback,
		policy:    RearmManual,
		quiet:     defaultQuietInterval,
		timeout:   defaultValidateTimeout,
		afterFunc: time.AfterFunc,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// OnScan is the only entry point for raw scanner callbacks. It reports
// whether the scan was accepted; while a prior validation is in flight every
// callback is dropped, not queued.
func (d *Debouncer) OnScan(raw string) bool {
	d.mu.Lock()
	if d.state != stateArmed {
		d.mu.Unlock()
		return false
	}
	d.state = stateBusy
	d.mu.Unlock()

	if d.feedback != nil {
		d.feedback.ScanAccepted(raw)
	}

	go d.run(raw)
	return true
}

// Rearm reopens the gate. Under RearmManual the caller invokes it after
// acknowledging the result; under RearmAuto it also serves as an immediate
// override of the quiet interval.
func (d *Debouncer) Rearm() {
	d.mu.Lock()
	d.state = stateArmed
	d.mu.Unlock()
}

func (d *Debouncer) run(raw string) {
	res := Result{Raw: raw}

	payload, err := qr.Decode(raw)
	if err != nil {
		res.Err = &ScanError{Kind: KindMalformedPayload, Err: err}
		d.settle(res)
		return
	}
	res.Payload = payload

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	ticket, scanErr := d.validator.Validate(ctx, payload.TicketID, payload.OwnerID)
	if scanErr != nil {
		// A server verdict that raced the deadline still stands; only a
		// failure without one becomes a timeout.
		if ctx.Err() != nil && (scanErr.Kind == KindTransport || scanErr.Kind == KindUnknown) {
			scanErr = &ScanError{Kind: KindTransport, Message: "validation timed out", Err: ctx.Err()}
		}
		res.Err = scanErr
		d.settle(res)
		return
	}

	res.Ticket = ticket
	d.settle(res)
}

// settle delivers the result exactly once and applies the re-arm policy. A
// decode failure is pointless to retry without operator action, so it
// follows the same path: cue first, then re-arm.
func (d *Debouncer) settle(res Result) {
	if d.feedback != nil {
		d.feedback.ScanSettled(res)
	}

	if d.policy == RearmAuto {
		d.afterFunc(d.quiet, d.Rearm)
	}
}
