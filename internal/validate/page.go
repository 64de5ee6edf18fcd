package validate

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type PageQuery struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

func (q *PageQuery) Normalize() {
	if q.Page == 0 {
		q.Page = DefaultPage
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
}

func (q *PageQuery) Validate() error {
	if err := validation.Validate(q.Page, validation.Min(1).Error("Page must be a positive integer")); err != nil {
		return err
	}
	return validation.Validate(q.Limit,
		validation.Min(1).Error("Limit must be between 1 and 100"),
		validation.Max(MaxLimit).Error("Limit must be between 1 and 100"),
	)
}

func (q *PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

// device_id is VARCHAR(255).
var deviceLength = validation.RuneLength(0, 255).Error("Device id must be at most 255 characters")

type DeviceParams struct {
	DeviceID string `param:"deviceId"`
}

func (p *DeviceParams) Normalize() { p.DeviceID = strings.TrimSpace(p.DeviceID) }

func (p *DeviceParams) Validate() error {
	return validation.Validate(p.DeviceID,
		validation.Required.Error("Device id is required"),
		deviceLength,
	)
}

// DeviceHeader carries the optional device a client logs in from. An empty
// value means the default device.
type DeviceHeader struct {
	DeviceID string `header:"X-Device-ID"`
}

func (h *DeviceHeader) Normalize() { h.DeviceID = strings.TrimSpace(h.DeviceID) }

func (h *DeviceHeader) Validate() error {
	return validation.Validate(h.DeviceID, deviceLength)
}
