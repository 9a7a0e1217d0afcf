package validation

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/talenthub/apperror"
)

// QueryInt64 reads an optional positive integer query parameter.
// A missing or empty parameter returns (0, false, nil); anything that is not a
// positive base-10 integer is a validation error.
func QueryInt64(r *http.Request, name string) (int64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, false, apperror.NewValidationError(fmt.Sprintf("%s must be a positive integer", name), err)
	}
	return v, true, nil
}

// QueryInt reads an optional non-negative integer query parameter.
func QueryInt(r *http.Request, name string) (int, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false, apperror.NewValidationError(fmt.Sprintf("%s must be a non-negative integer", name), err)
	}
	return v, true, nil
}

// QueryFloat reads an optional non-negative number query parameter.
func QueryFloat(r *http.Request, name string) (float64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false, apperror.NewValidationError(fmt.Sprintf("%s must be a non-negative number", name), err)
	}
	return v, true, nil
}

// QueryEnum reads an optional query parameter that must be one of allowed.
func QueryEnum(r *http.Request, name string, allowed ...string) (string, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return "", false, nil
	}
	for _, a := range allowed {
		if raw == a {
			return raw, true, nil
		}
	}
	return "", false, apperror.NewValidationError(fmt.Sprintf("%s must be one of %v", name, allowed), nil)
}

// PathID parses a positive integer chi URL parameter.
func PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, apperror.NewValidationError(fmt.Sprintf("%s must be a positive integer", name), err)
	}
	return v, nil
}

// Page is a validated page/limit pair.
type Page struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// DefaultPageLimit, MaxPageLimit and MaxPage bound list endpoints.
// MaxPage keeps the offset far from integer overflow.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	MaxPage          = 10000
)

// QueryPage reads page (1..MaxPage, default 1) and limit (1..MaxPageLimit, default DefaultPageLimit).
func QueryPage(r *http.Request) (Page, error) {
	p := Page{Page: 1, Limit: DefaultPageLimit}
	if v, ok, err := QueryInt(r, "page"); err != nil {
		return p, err
	} else if ok {
		if v < 1 || v > MaxPage {
			return p, apperror.NewValidationError(fmt.Sprintf("page must be between 1 and %d", MaxPage), nil)
		}
		p.Page = v
	}
	if v, ok, err := QueryInt(r, "limit"); err != nil {
		return p, err
	} else if ok {
		if v < 1 || v > MaxPageLimit {
			return p, apperror.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxPageLimit), nil)
		}
		p.Limit = v
	}
	return p, nil
}
