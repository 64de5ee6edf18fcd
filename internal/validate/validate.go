// Package validate binds a named part of the request into a schema,
// normalizes it and checks its rules before the handler runs. The first
// violated rule is reported as a VALIDATION_ERROR.
package validate

import (
	"encoding/json"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/account_service/internal/apperr"
)

type Target string

const (
	Body   Target = "body"
	Query  Target = "query"
	Params Target = "params"
	Header Target = "header"
)

const defaultMessage = "Invalid request data"

// Schema is implemented by pointer types bound from a request.
type Schema interface {
	// Normalize coerces the bound value in place.
	Normalize()
	// Validate returns the first violated rule.
	Validate() error
}

// TypeMessager lets a schema name the message reported when a field holds a
// value of the wrong type, keyed by the field's json name.
type TypeMessager interface {
	TypeMessages() map[string]string
}

func contextKey(target Target) string { return "validated." + string(target) }

// Request returns middleware that validates target against T. On success the
// normalized value is stored on the context and read back with Value.
func Request[T any, PT interface {
	*T
	Schema
}](target Target) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := PT(new(T))
			if err := bind(c, target, v); err != nil {
				return apperr.Wrap(apperr.CodeValidation, bindMessage(v, err), err)
			}
			v.Normalize()
			if err := v.Validate(); err != nil {
				return apperr.Wrap(apperr.CodeValidation, err.Error(), err)
			}
			c.Set(contextKey(target), *v)
			return next(c)
		}
	}
}

// Value returns the normalized value stored by Request for target.
func Value[T any](c echo.Context, target Target) (T, bool) {
	v, ok := c.Get(contextKey(target)).(T)
	return v, ok
}

func bind(c echo.Context, target Target, v any) error {
	b := &echo.DefaultBinder{}
	switch target {
	case Query:
		return b.BindQueryParams(c, v)
	case Params:
		return b.BindPathParams(c, v)
	case Header:
		return b.BindHeaders(c, v)
	default:
		return b.BindBody(c, v)
	}
}

func bindMessage(v any, err error) string {
	tm, ok := v.(TypeMessager)
	if !ok {
		return defaultMessage
	}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		if msg, ok := tm.TypeMessages()[ute.Field]; ok {
			return msg
		}
	}
	return defaultMessage
}
