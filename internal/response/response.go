// Package response renders the JSON envelopes shared by every endpoint.
package response

import (
	"errors"
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
)

const defaultMessage = "Request successful"

type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

var ErrInvalidPagination = errors.New("page and limit must be positive and total must not be negative")

// NewPagination derives the page metadata for a result set of total items.
func NewPagination(page, limit int, total int64) (Pagination, error) {
	if page < 1 || limit < 1 || total < 0 {
		return Pagination{}, ErrInvalidPagination
	}
	return Pagination{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		HasNextPage: int64(page)*int64(limit) < total,
		HasPrevPage: page > 1,
	}, nil
}

func Success(c echo.Context, status int, data any, message string) error {
	if status == 0 {
		status = http.StatusOK
	}
	if message == "" {
		message = defaultMessage
	}
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func Paginated(c echo.Context, status int, data any, p Pagination, message string) error {
	if status == 0 {
		status = http.StatusOK
	}
	if message == "" {
		message = defaultMessage
	}
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data, Pagination: &p})
}

func Error(c echo.Context, status int, message, code string) error {
	return c.JSON(status, ErrorEnvelope{Success: false, Message: message, Code: code})
}
