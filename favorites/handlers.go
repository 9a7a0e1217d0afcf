package favorites

import (
	"net/http"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

// Handlers exposes favorites over HTTP.
type Handlers struct {
	service    *Service
	principals guard.PrincipalLoader
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service, principals guard.PrincipalLoader) *Handlers {
	return &Handlers{service: service, principals: principals}
}

// HandleCheck godoc
// @Summary Is the job bookmarked?
// @Description Anonymous callers and companies always get isFavorite=false.
// @Tags Favorites
// @Produce json
// @Param jobId query int true "Job id"
// @Success 200 {object} favorites.CheckResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /favorites [get]
func (h *Handlers) HandleCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID, ok, err := validation.QueryInt64(r, "jobId")
		if err == nil && !ok {
			err = apperror.NewValidationError("jobId is required", nil)
		}
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		p, err := guard.ResolveOptional(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		res, err := h.service.Check(r.Context(), p, jobID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// HandleToggle godoc
// @Summary Toggle a bookmark
// @Tags Favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param favorite body favorites.ToggleRequest true "Job to toggle"
// @Success 200 {object} favorites.ToggleResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /favorites/toggle [post]
func (h *Handlers) HandleToggle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var req ToggleRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		res, err := h.service.Toggle(r.Context(), p, req.JobID)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, res)
	}
}

// HandleList godoc
// @Summary List bookmarks
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {array} favorites.FavoriteJob
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /dashboard/favorites [get]
func (h *Handlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		favs, err := h.service.List(r.Context(), p)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, favs)
	}
}
