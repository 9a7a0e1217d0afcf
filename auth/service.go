package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/db"
)

// Service implements registration, login, token refresh and logout.
type Service struct {
	store    UserStore
	codec    *Codec
	resolver *Resolver
	revoker  Revoker
	timeout  time.Duration
	hashCost int
	// dummyHash is compared against when the phone is unknown so that a
	// missing account and a wrong password take about the same time.
	dummyHash []byte
}

// NewService creates a new auth Service. timeout bounds each store call.
func NewService(store UserStore, codec *Codec, revoker Revoker, timeout time.Duration) *Service {
	if revoker == nil {
		revoker = NopRevoker{}
	}
	s := &Service{
		store:    store,
		codec:    codec,
		resolver: NewResolver(codec, revoker),
		revoker:  revoker,
		timeout:  timeout,
		hashCost: bcrypt.DefaultCost,
	}
	s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("talenthub-timing-equalizer"), s.hashCost)
	return s
}

// Register creates the account and its profile and logs the new user in.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	acc := NewAccount{Phone: req.Phone, Role: req.UserType}
	switch req.UserType {
	case RoleTalent:
		acc.RealName = strings.TrimSpace(req.RealName)
		if acc.RealName == "" {
			return nil, apperror.NewValidationError("realName is required for talent accounts", nil)
		}
	case RoleCompany:
		acc.CompanyName = strings.TrimSpace(req.CompanyName)
		if acc.CompanyName == "" {
			return nil, apperror.NewValidationError("companyName is required for company accounts", nil)
		}
		if req.CityID <= 0 {
			return nil, apperror.NewValidationError("cityId is required for company accounts", nil)
		}
		if req.IndustryLevel1ID <= 0 {
			return nil, apperror.NewValidationError("industryLevel1Id is required for company accounts", nil)
		}
		acc.CityID = req.CityID
		acc.IndustryLevel1ID = req.IndustryLevel1ID
	default:
		return nil, apperror.NewValidationError("userType must be one of [talent company]", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperror.NewValidationError("password cannot be used", err)
	}
	acc.PasswordHash = string(hash)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.store.CreateAccount(ctx, acc)
	if err != nil {
		if db.IsUniqueViolation(err, phoneConstraint) {
			return nil, apperror.NewConflictError("phone number is already registered", err)
		}
		return nil, db.Translate(err, "account")
	}
	log.Printf("auth: registered %s user %d", user.UserType, user.ID)
	return s.issuePair(user)
}

// Login checks the phone/password pair. Unknown phones and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.store.GetUserByPhone(ctx, req.Phone)
	if err != nil {
		err = db.Translate(err, "user")
		if apperror.IsNotFound(err) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return nil, apperror.NewInvalidCredentials()
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.NewInvalidCredentials()
	}
	return s.issuePair(user)
}

// Refresh exchanges a valid refresh token for a new pair. The old refresh token is revoked.
func (s *Service) Refresh(ctx context.Context, raw string) (*TokenResponse, error) {
	id, err := s.resolver.ResolveToken(ctx, raw, RefreshToken)
	if err != nil {
		log.Printf("auth: refresh rejected: %v", err)
		return nil, apperror.NewUnauthenticated()
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.store.GetUserByID(storeCtx, id.UserID)
	if err != nil {
		err = db.Translate(err, "user")
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthenticated()
		}
		return nil, err
	}
	if err := s.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		return nil, apperror.NewExternalServiceError("could not rotate refresh token", err)
	}
	return s.issuePair(user)
}

// Logout revokes the caller's access token and, when it belongs to the same user,
// the supplied refresh token.
func (s *Service) Logout(ctx context.Context, caller *Identity, refreshToken string) error {
	if err := s.revoker.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return apperror.NewExternalServiceError("could not revoke token", err)
	}
	if refreshToken == "" {
		return nil
	}
	rid, err := s.codec.Verify(refreshToken, RefreshToken)
	if err != nil || rid.UserID != caller.UserID {
		// Nothing to revoke; an invalid refresh token is already useless.
		return nil
	}
	if err := s.revoker.Revoke(ctx, rid.TokenID, rid.ExpiresAt); err != nil {
		return apperror.NewExternalServiceError("could not revoke token", err)
	}
	return nil
}

// Resolver returns the session resolver sharing this service's codec and revoker.
func (s *Service) Resolver() *Resolver { return s.resolver }

func (s *Service) issuePair(user *User) (*TokenResponse, error) {
	access, err := s.codec.Issue(user.ID, user.UserType, AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.codec.Issue(user.ID, user.UserType, RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &TokenResponse{
		User:         user,
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.codec.Lifetime(AccessToken) / time.Second),
	}, nil
}
