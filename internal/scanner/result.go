package scanner

import (
	"fmt"

	"github.com/minq3010/ticket-checkin/internal/qr"
)

// ErrorKind classifies why a scan did not end in a successful check-in.
// It is decided once, at the decode step or the network boundary, and never
// re-derived downstream from message text.
type ErrorKind int

const (
	// KindMalformedPayload: the QR text failed to decode. Never sent over
	// the wire.
	KindMalformedPayload ErrorKind = iota
	// KindAlreadyEntered: the server reports the ticket was already used.
	KindAlreadyEntered
	// KindNotFound: no ticket matches the id/owner pair.
	KindNotFound
	// KindTransport: the request never got a usable response.
	KindTransport
	// KindUnknown: any other server-side rejection.
	KindUnknown
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedPayload:
		return "malformed_payload"
	case KindAlreadyEntered:
		return "already_entered"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// ScanError is the terminal failure for one scan. No retries: the operator
// re-presents the code, which re-runs the whole pipeline.
type ScanError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ScanError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *ScanError) Unwrap() error { return e.Err }

// Result is delivered to the UI exactly once per accepted scan.
type Result struct {
	Raw     string
	Payload qr.Payload
	Ticket  *CheckedInTicket
	Err     *ScanError
}

func (r Result) OK() bool { return r.Err == nil }

// CheckedInTicket is the confirmation the gate operator sees.
type CheckedInTicket struct {
	ID        uint   `json:"id"`
	EventID   uint   `json:"event_id"`
	OwnerID   uint   `json:"owner_id"`
	EventName string `json:"event_name,omitempty"`
}
