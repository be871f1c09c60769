package qr

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ticketTag = "ticket"
	ownerTag  = "owner"
)

// Payload is the identifier pair embedded in a ticket's QR image.
type Payload struct {
	TicketID uint
	OwnerID  uint
}

// DecodeError reports a malformed scan payload. It carries the raw text so
// the operator-facing UI can show what the scanner actually read.
type DecodeError struct {
	Raw    string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed scan payload %q: %s", e.Raw, e.Reason)
}

// Encode renders the wire format shared with the ticket-issuance side:
// "ticket:<id>,owner:<id>". Tag strings and ordering are part of the
// contract and must match what Decode expects.
func Encode(ticketID, ownerID uint) string {
	return fmt.Sprintf("%s:%d,%s:%d", ticketTag, ticketID, ownerTag, ownerID)
}

// Decode parses a raw scan into a Payload. Scanner input is untrusted, so
// every violation returns a *DecodeError rather than panicking. Surrounding
// whitespace is tolerated; tag order is fixed (ticket first, owner second).
func Decode(text string) (Payload, error) {
	if strings.TrimSpace(text) == "" {
		return Payload{}, &DecodeError{Raw: text, Reason: "empty payload"}
	}

	segments := strings.Split(text, ",")
	if len(segments) != 2 {
		return Payload{}, &DecodeError{Raw: text, Reason: fmt.Sprintf("expected 2 segments, got %d", len(segments))}
	}

	ticketID, err := parseSegment(text, segments[0], ticketTag)
	if err != nil {
		return Payload{}, err
	}
	ownerID, err := parseSegment(text, segments[1], ownerTag)
	if err != nil {
		return Payload{}, err
	}

	return Payload{TicketID: ticketID, OwnerID: ownerID}, nil
}

func parseSegment(raw, segment, wantTag string) (uint, error) {
	tag, value, found := strings.Cut(segment, ":")
	if !found {
		return 0, &DecodeError{Raw: raw, Reason: fmt.Sprintf("segment %q has no colon", segment)}
	}

	if strings.TrimSpace(tag) != wantTag {
		return 0, &DecodeError{Raw: raw, Reason: fmt.Sprintf("expected tag %q, got %q", wantTag, strings.TrimSpace(tag))}
	}

	id, err := strconv.ParseUint(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, &DecodeError{Raw: raw, Reason: fmt.Sprintf("%s id %q is not a non-negative integer", wantTag, strings.TrimSpace(value))}
	}

	return uint(id), nil
}
