package qr

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const imageSize = 256

// Image renders the QR PNG a ticket holder presents at the gate.
func Image(ticketID, ownerID uint) ([]byte, error) {
	png, err := qrcode.Encode(Encode(ticketID, ownerID), qrcode.Medium, imageSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr image: %w", err)
	}
	return png, nil
}

// ImageBase64 is the form the ticket detail endpoint returns; clients embed
// it directly as a data URI.
func ImageBase64(ticketID, ownerID uint) (string, error) {
	png, err := Image(ticketID, ownerID)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
