package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/minq3010/ticket-checkin/internal/dto"
)

// ErrorHandler renders every error as {"code": ..., "message": ...} so
// scanning clients can branch on the code without parsing prose.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := dto.ErrorResponse{Code: dto.CodeInternal, Message: err.Error()}

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch m := he.Message.(type) {
		case dto.ErrorResponse:
			body = m
		case string:
			body = dto.ErrorResponse{Code: defaultCode(status), Message: m}
		}
	}

	_ = c.JSON(status, body)
}

func defaultCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return dto.CodeInvalidRequest
	case http.StatusNotFound:
		return dto.CodeTicketNotFound
	default:
		return dto.CodeInternal
	}
}
