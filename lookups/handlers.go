package lookups

import (
	"net/http"

	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

// Handlers exposes the reference data over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleProvinces godoc
// @Summary List provinces
// @Tags Lookups
// @Produce json
// @Success 200 {array} lookups.Province
// @Router /provinces [get]
func (h *Handlers) HandleProvinces() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, h.service.Provinces(r.Context()))
	}
}

// HandleCities godoc
// @Summary List cities
// @Description Lists cities, optionally only those of one province.
// @Tags Lookups
// @Produce json
// @Param provinceId query int false "Province id"
// @Success 200 {array} lookups.City
// @Failure 400 {object} apperror.ErrorResponse
// @Router /cities [get]
func (h *Handlers) HandleCities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provinceID, _, err := validation.QueryInt64(r, "provinceId")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, h.service.Cities(r.Context(), provinceID))
	}
}

// HandleIndustriesLevel1 godoc
// @Summary List top-level industries
// @Tags Lookups
// @Produce json
// @Success 200 {array} lookups.IndustryLevel1
// @Router /industries-level1 [get]
func (h *Handlers) HandleIndustriesLevel1() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, h.service.IndustriesLevel1(r.Context()))
	}
}

// HandleIndustriesLevel2 godoc
// @Summary List second-level industries
// @Tags Lookups
// @Produce json
// @Param level1Id query int false "Parent industry id"
// @Success 200 {array} lookups.IndustryLevel2
// @Failure 400 {object} apperror.ErrorResponse
// @Router /industries-level2 [get]
func (h *Handlers) HandleIndustriesLevel2() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		level1ID, _, err := validation.QueryInt64(r, "level1Id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, h.service.IndustriesLevel2(r.Context(), level1ID))
	}
}

// HandleSkills godoc
// @Summary List skills
// @Tags Lookups
// @Produce json
// @Param category query string false "Skill category"
// @Success 200 {array} lookups.Skill
// @Router /skills [get]
func (h *Handlers) HandleSkills() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, h.service.Skills(r.Context(), r.URL.Query().Get("category")))
	}
}
