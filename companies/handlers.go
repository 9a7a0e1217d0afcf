package companies

import (
	"net/http"
	"strings"

	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

// Handlers exposes the company directory over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleSearch godoc
// @Summary Search companies
// @Tags Companies
// @Produce json
// @Param cityId query int false "City"
// @Param provinceId query int false "Province"
// @Param industryLevel1Id query int false "Top-level industry"
// @Param industryLevel2Id query int false "Second-level industry"
// @Param keyword query string false "Matches name or description"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, 1 to 100"
// @Success 200 {object} companies.SearchResult
// @Failure 400 {object} apperror.ErrorResponse
// @Router /companies [get]
func (h *Handlers) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f Filter
		var err error
		if f.Page, err = validation.QueryPage(r); err != nil {
			respond.Error(w, r, err)
			return
		}
		for _, q := range []struct {
			name string
			dst  *int64
		}{
			{"cityId", &f.CityID},
			{"provinceId", &f.ProvinceID},
			{"industryLevel1Id", &f.IndustryLevel1ID},
			{"industryLevel2Id", &f.IndustryLevel2ID},
		} {
			if *q.dst, _, err = validation.QueryInt64(r, q.name); err != nil {
				respond.Error(w, r, err)
				return
			}
		}
		f.Keyword = strings.TrimSpace(r.URL.Query().Get("keyword"))

		res, err := h.service.Search(r.Context(), f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// HandleGet godoc
// @Summary Company page
// @Description The company profile with its published postings.
// @Tags Companies
// @Produce json
// @Param id path int true "Company id"
// @Success 200 {object} companies.Detail
// @Failure 404 {object} apperror.ErrorResponse
// @Router /companies/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		detail, err := h.service.Get(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, detail)
	}
}
