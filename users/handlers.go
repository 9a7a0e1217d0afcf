package users

import (
	"net/http"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

// UserHandlers provides HTTP handlers for the current user and profile management.
type UserHandlers struct {
	service *Service
}

// NewUserHandlers creates new UserHandlers.
func NewUserHandlers(service *Service) *UserHandlers {
	return &UserHandlers{service: service}
}

// HandleMe godoc
// @Summary Current user
// @Description Returns the caller and their profile, or {"user": null} without a valid token.
// @Tags Auth
// @Produce json
// @Success 200 {object} users.MeResponse
// @Router /auth/me [get]
func (h *UserHandlers) HandleMe() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFromContext(r.Context())
		resp, err := h.service.Me(r.Context(), id)
		if apperror.IsNotFound(err) {
			// The token outlived its user.
			resp, err = &MeResponse{}, nil
		}
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, resp)
	}
}

// HandleProfile godoc
// @Summary Current user (authenticated)
// @Description Same payload as /auth/me but answers 401 without a valid token.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.MeResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /auth/profile [get]
func (h *UserHandlers) HandleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			respond.Error(w, r, apperror.NewUnauthenticated())
			return
		}
		resp, err := h.service.Me(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, resp)
	}
}

// HandleGetTalentProfile godoc
// @Summary Get talent profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.TalentProfile
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /profile/talent [get]
func (h *UserHandlers) HandleGetTalentProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			respond.Error(w, r, apperror.NewUnauthenticated())
			return
		}
		profile, err := h.service.TalentProfile(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateTalentProfile godoc
// @Summary Update talent profile
// @Description Partial update. Omitted fields are unchanged, null clears a field, skillIds replaces the skill list.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body users.UpdateTalentRequest true "Fields to change"
// @Success 200 {object} users.TalentProfile
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /profile/talent [put]
func (h *UserHandlers) HandleUpdateTalentProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			respond.Error(w, r, apperror.NewUnauthenticated())
			return
		}
		var req UpdateTalentRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		profile, err := h.service.UpdateTalentProfile(r.Context(), id, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, profile)
	}
}

// HandleGetCompanyProfile godoc
// @Summary Get company profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} users.CompanyProfile
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /profile/company [get]
func (h *UserHandlers) HandleGetCompanyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			respond.Error(w, r, apperror.NewUnauthenticated())
			return
		}
		profile, err := h.service.CompanyProfile(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, profile)
	}
}

// HandleUpdateCompanyProfile godoc
// @Summary Update company profile
// @Description Partial update. companyName, cityId and industryLevel1Id cannot be set to null.
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body users.UpdateCompanyRequest true "Fields to change"
// @Success 200 {object} users.CompanyProfile
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /profile/company [put]
func (h *UserHandlers) HandleUpdateCompanyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			respond.Error(w, r, apperror.NewUnauthenticated())
			return
		}
		var req UpdateCompanyRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		profile, err := h.service.UpdateCompanyProfile(r.Context(), id, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, profile)
	}
}
