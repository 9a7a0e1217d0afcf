package jobs

import (
	"net/http"

	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

// Handlers exposes job postings over HTTP.
type Handlers struct {
	service    *Service
	principals guard.PrincipalLoader
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service, principals guard.PrincipalLoader) *Handlers {
	return &Handlers{service: service, principals: principals}
}

func parseSearchFilter(r *http.Request) (SearchFilter, error) {
	var f SearchFilter
	var err error
	if f.Page, err = validation.QueryPage(r); err != nil {
		return f, err
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
			return f, err
		}
	}
	if v, ok, err := validation.QueryFloat(r, "salaryMin"); err != nil {
		return f, err
	} else if ok {
		f.SalaryMin = &v
	}
	if v, ok, err := validation.QueryFloat(r, "salaryMax"); err != nil {
		return f, err
	} else if ok {
		f.SalaryMax = &v
	}
	if v, ok, err := validation.QueryInt(r, "workExperience"); err != nil {
		return f, err
	} else if ok {
		f.WorkExperience = &v
	}
	if f.Education, _, err = validation.QueryEnum(r, "education", "high_school", "associate", "bachelor", "master", "phd"); err != nil {
		return f, err
	}
	f.Keyword = r.URL.Query().Get("keyword")
	return f, nil
}

// HandleSearch godoc
// @Summary Search jobs
// @Description Lists published postings, newest first.
// @Tags Jobs
// @Produce json
// @Param cityId query int false "City"
// @Param provinceId query int false "Province (all of its cities)"
// @Param industryLevel1Id query int false "Top-level industry"
// @Param industryLevel2Id query int false "Second-level industry"
// @Param salaryMin query number false "Minimum of salary_min"
// @Param salaryMax query number false "Maximum of salary_max"
// @Param workExperience query int false "Years of experience the seeker has"
// @Param education query string false "Required education" Enums(high_school, associate, bachelor, master, phd)
// @Param keyword query string false "Matches position name or description"
// @Param page query int false "Page, from 1"
// @Param limit query int false "Page size, 1 to 100"
// @Success 200 {object} jobs.SearchResult
// @Failure 400 {object} apperror.ErrorResponse
// @Router /jobs [get]
func (h *Handlers) HandleSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseSearchFilter(r)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		result, err := h.service.Search(r.Context(), f)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, result)
	}
}

// HandleGet godoc
// @Summary Job detail
// @Tags Jobs
// @Produce json
// @Param id path int true "Job id"
// @Success 200 {object} jobs.Job
// @Failure 404 {object} apperror.ErrorResponse
// @Router /jobs/{id} [get]
func (h *Handlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validation.PathID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		job, err := h.service.GetPublished(r.Context(), id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, job)
	}
}

// HandleListOwn godoc
// @Summary List own postings
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status" Enums(draft, published, closed, expired)
// @Success 200 {array} jobs.Job
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /dashboard/jobs [get]
func (h *Handlers) HandleListOwn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		status, _, err := validation.QueryEnum(r, "status", "draft", "published", "closed", "expired")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		jobs, err := h.service.ListOwn(r.Context(), p, Status(status))
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, jobs)
	}
}

// HandleCreate godoc
// @Summary Create posting
// @Description Creates a published posting for the caller's company.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param job body jobs.CreateJobRequest true "Posting"
// @Success 201 {object} jobs.Job
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Router /dashboard/jobs [post]
func (h *Handlers) HandleCreate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var req CreateJobRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		job, err := h.service.Create(r.Context(), p, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, job)
	}
}

// HandleGetOwn godoc
// @Summary Get own posting
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job id"
// @Success 200 {object} jobs.Job
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /dashboard/jobs/{id} [get]
func (h *Handlers) HandleGetOwn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		id, err := validation.PathID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		job, err := h.service.GetOwn(r.Context(), p, id)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, job)
	}
}

// HandleUpdate godoc
// @Summary Update own posting
// @Description Partial update. Setting status to published stamps publishedAt if it was never set.
// @Tags Dashboard
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Job id"
// @Param job body jobs.UpdateJobRequest true "Fields to change"
// @Success 200 {object} jobs.Job
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /dashboard/jobs/{id} [put]
func (h *Handlers) HandleUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		id, err := validation.PathID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		var req UpdateJobRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		job, err := h.service.Update(r.Context(), p, id, req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, job)
	}
}

// HandleDelete godoc
// @Summary Delete own posting
// @Tags Dashboard
// @Security BearerAuth
// @Param id path int true "Job id"
// @Success 204
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /dashboard/jobs/{id} [delete]
func (h *Handlers) HandleDelete() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := guard.Resolve(r.Context(), h.principals)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		id, err := validation.PathID(r, "id")
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		if err := h.service.Delete(r.Context(), p, id); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.NoContent(w)
	}
}
