package auth

import (
	"net/http"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/respond"
	"github.com/user/talenthub/validation"
)

// Handlers exposes the auth Service over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// HandleRegister godoc
// @Summary Register
// @Description Creates a talent or company account with its profile and returns a token pair.
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "Account details"
// @Success 201 {object} auth.TokenResponse
// @Failure 400 {object} apperror.ErrorResponse "Invalid input"
// @Failure 409 {object} apperror.ErrorResponse "Phone already registered"
// @Failure 500 {object} apperror.ErrorResponse
// @Router /auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		resp, err := h.service.Register(r.Context(), req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusCreated, resp)
	}
}

// HandleLogin godoc
// @Summary Login
// @Description Exchanges phone and password for an access and refresh token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid phone or password"
// @Failure 429 {object} apperror.ErrorResponse "Too many attempts"
// @Router /auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		resp, err := h.service.Login(r.Context(), req)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, resp)
	}
}

// HandleRefresh godoc
// @Summary Refresh tokens
// @Description Rotates a refresh token into a new token pair. The old refresh token stops working.
// @Tags Auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshRequest true "Refresh token"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /auth/refresh [post]
func (h *Handlers) HandleRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		if err := validation.Decode(w, r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
		resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.JSON(w, http.StatusOK, resp)
	}
}

// HandleLogout godoc
// @Summary Logout
// @Description Revokes the current access token and, if given, the refresh token.
// @Tags Auth
// @Accept json
// @Param logoutBody body auth.LogoutRequest false "Refresh token to revoke"
// @Success 204
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			respond.Error(w, r, apperror.NewUnauthenticated())
			return
		}
		var req LogoutRequest
		if r.ContentLength != 0 {
			if err := validation.Decode(w, r, &req); err != nil {
				respond.Error(w, r, err)
				return
			}
		}
		if err := h.service.Logout(r.Context(), id, req.RefreshToken); err != nil {
			respond.Error(w, r, err)
			return
		}
		respond.NoContent(w)
	}
}
