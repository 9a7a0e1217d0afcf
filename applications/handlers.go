package applications

import (
	"net/http"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

var applicationStatuses = []string{"pending", "reviewed", "accepted", "rejected", "withdrawn"}

// Handlers exposes applications over HTTP.
type Handlers struct {
	service    *Service
	principals guard.PrincipalLoader
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service, principals guard.PrincipalLoader) *Handlers {
	return &Handlers{service: service, principals: principals}
}

// HandleApply godoc
// @Summary Apply to a job
// @Tags Applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param application body applications.ApplyRequest true "Application"
// @Success 201 {object} applications.ApplyResponse
// @Failure 400 {object} apperror.ErrorResponse "Job is not published"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Already applied"
// @Router /applications [post]
func (h *Handlers) HandleApply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var req ApplyRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		res, err := h.service.Apply(r.Context(), p, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, res)
	}
}

// HandleCheck godoc
// @Summary Has the caller applied?
// @Description Anonymous callers and companies always get hasApplied=false.
// @Tags Applications
// @Produce json
// @Param jobId query int true "Job id"
// @Success 200 {object} applications.CheckResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Router /applications/check [get]
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

// HandleListOwn godoc
// @Summary List own applications
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, reviewed, accepted, rejected, withdrawn)
// @Success 200 {array} applications.Application
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /dashboard/applications [get]
func (h *Handlers) HandleListOwn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		status, _, err := validation.QueryEnum(r, "status", applicationStatuses...)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		apps, err := h.service.ListOwn(r.Context(), p, guard.ApplicationStatus(status))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, apps)
	}
}

// HandleGetOwn godoc
// @Summary Get own application
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application id"
// @Success 200 {object} applications.Application
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /dashboard/applications/{id} [get]
func (h *Handlers) HandleGetOwn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := h.principalAndID(w, r)
		if !ok {
			return
		}
		app, err := h.service.GetOwn(r.Context(), p, id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, app)
	}
}

// HandleWithdraw godoc
// @Summary Withdraw own application
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application id"
// @Success 200 {object} applications.Application
// @Failure 400 {object} apperror.ErrorResponse "Already withdrawn"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Status changed meanwhile"
// @Router /dashboard/applications/{id}/withdraw [post]
func (h *Handlers) HandleWithdraw() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := h.principalAndID(w, r)
		if !ok {
			return
		}
		app, err := h.service.Withdraw(r.Context(), p, id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, app)
	}
}

// HandleListResumes godoc
// @Summary List received applications
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(pending, reviewed, accepted, rejected, withdrawn)
// @Param jobId query int false "Filter by posting"
// @Success 200 {array} applications.Application
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /dashboard/resumes [get]
func (h *Handlers) HandleListResumes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var f ResumeFilter
		status, _, err := validation.QueryEnum(r, "status", applicationStatuses...)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		f.Status = guard.ApplicationStatus(status)
		if f.JobID, _, err = validation.QueryInt64(r, "jobId"); err != nil {
			respond.Error(w, r, err)
			return
		}
		apps, err := h.service.ListResumes(r.Context(), p, f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, apps)
	}
}

// HandleGetResume godoc
// @Summary Get received application
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application id"
// @Success 200 {object} applications.Resume
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /dashboard/resumes/{id} [get]
func (h *Handlers) HandleGetResume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := h.principalAndID(w, r)
		if !ok {
			return
		}
		resume, err := h.service.GetResume(r.Context(), p, id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, resume)
	}
}

// HandleUpdateStatus godoc
// @Summary Review an application
// @Description Moves a received application along pending, reviewed, accepted or rejected, optionally with a reply.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application id"
// @Param review body applications.UpdateStatusRequest true "Decision"
// @Success 200 {object} applications.Application
// @Failure 400 {object} apperror.ErrorResponse "Invalid transition"
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Status changed meanwhile"
// @Router /dashboard/resumes/{id}/status [put]
func (h *Handlers) HandleUpdateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, id, ok := h.principalAndID(w, r)
		if !ok {
			return
		}
		var req UpdateStatusRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		app, err := h.service.UpdateStatus(r.Context(), p, id, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, app)
	}
}

// principalAndID resolves the caller and the {id} path parameter, writing the
// error response itself when either fails.
func (h *Handlers) principalAndID(w http.ResponseWriter, r *http.Request) (guard.Principal, int64, bool) {
	p, err := guard.Resolve(r.Context(), h.principals)
	if err != nil {
		respond.Error(w, r, err)
		return p, 0, false
	}
	id, err := validation.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, err)
		return p, 0, false
	}
	return p, id, true
}
