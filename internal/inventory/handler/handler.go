// Package handler exposes the inventory ledger over HTTP. Handlers
// decode and validate request DTOs, pull the mutation secret off the
// request where one is required, and delegate to the service layer.
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/imaps/imaps-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

func idParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, errors.BadRequest("invalid id")
	}
	return id, nil
}

func codeParam(r *http.Request) (string, error) {
	code := chi.URLParam(r, "code")
	if code == "" {
		return "", errors.BadRequest("invalid code")
	}
	return code, nil
}

// parseDate parses a YYYY-MM-DD request field. Validation tags catch
// malformed input first; this is the conversion step.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.BadRequest("invalid date, expected YYYY-MM-DD")
	}
	return t, nil
}

func parseCost(value *string) (decimal.NullDecimal, error) {
	if value == nil || *value == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*value)
	if err != nil {
		return decimal.NullDecimal{}, errors.BadRequest("invalid cost amount")
	}
	return decimal.NewNullDecimal(d), nil
}
