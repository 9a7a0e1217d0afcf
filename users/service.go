// Package users manages talent and company profiles and resolves an
// authenticated identity into a guard.Principal for the other services.
package users

import (
	"context"
	"time"

	"github.com/user/talenthub/apperror"
	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/db"
	"github.com/user/talenthub/guard"
	"github.com/user/talenthub/validation"
)

// Service provides profile lookups and updates.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a new users Service. timeout bounds each store call.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// Principal maps an identity to its talent or company profile id.
// A user whose profile row is missing gets a 404, not a 401: the token was fine.
func (s *Service) Principal(ctx context.Context, id *auth.Identity) (guard.Principal, error) {
	p := guard.Principal{UserID: id.UserID, Role: id.Role}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	switch id.Role {
	case auth.RoleTalent:
		talentID, err := s.store.TalentIDByUser(ctx, id.UserID)
		if err != nil {
			return p, db.Translate(err, "talent profile")
		}
		p.TalentID = talentID
	case auth.RoleCompany:
		companyID, err := s.store.CompanyIDByUser(ctx, id.UserID)
		if err != nil {
			return p, db.Translate(err, "company profile")
		}
		p.CompanyID = companyID
	default:
		return p, apperror.NewUnauthenticated()
	}
	return p, nil
}

// Me returns the caller together with their profile. A nil identity yields {user: null}.
func (s *Service) Me(ctx context.Context, id *auth.Identity) (*MeResponse, error) {
	if id == nil {
		return &MeResponse{}, nil
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := s.store.GetUser(storeCtx, id.UserID)
	if err != nil {
		return nil, db.Translate(err, "user")
	}

	me := &MeUser{ID: user.ID, Phone: user.Phone, UserType: user.UserType, CreatedAt: user.CreatedAt}
	switch user.UserType {
	case auth.RoleTalent:
		if profile, err := s.TalentProfile(ctx, id); err == nil {
			me.Profile = profile
		} else if !apperror.IsNotFound(err) {
			return nil, err
		}
	case auth.RoleCompany:
		if profile, err := s.CompanyProfile(ctx, id); err == nil {
			me.Profile = profile
		} else if !apperror.IsNotFound(err) {
			return nil, err
		}
	}
	return &MeResponse{User: me}, nil
}

// TalentProfile returns the caller's talent profile.
func (s *Service) TalentProfile(ctx context.Context, id *auth.Identity) (*TalentProfile, error) {
	p, err := s.Principal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsTalent() {
		return nil, apperror.NewUnauthorizedError("this action requires a talent account", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	profile, err := s.store.GetTalent(ctx, p.TalentID)
	if err != nil {
		return nil, db.Translate(err, "talent profile")
	}
	return profile, nil
}

// CompanyProfile returns the caller's company profile.
func (s *Service) CompanyProfile(ctx context.Context, id *auth.Identity) (*CompanyProfile, error) {
	p, err := s.Principal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsCompany() {
		return nil, apperror.NewUnauthorizedError("this action requires a company account", nil)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	profile, err := s.store.GetCompany(ctx, p.CompanyID)
	if err != nil {
		return nil, db.Translate(err, "company profile")
	}
	return profile, nil
}

// UpdateTalentProfile applies a partial update and returns the new profile.
func (s *Service) UpdateTalentProfile(ctx context.Context, id *auth.Identity, req UpdateTalentRequest) (*TalentProfile, error) {
	current, err := s.TalentProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	p := guard.Principal{UserID: id.UserID, Role: id.Role, TalentID: current.ID}
	if err := guard.CanUpdateProfile(p, current.UserID, auth.RoleTalent); err != nil {
		return nil, err
	}

	patch, err := talentPatch(req)
	if err != nil {
		return nil, err
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.UpdateTalent(storeCtx, current.ID, patch); err != nil {
		return nil, db.Translate(err, "talent profile")
	}
	return s.TalentProfile(ctx, id)
}

// UpdateCompanyProfile applies a partial update and returns the new profile.
func (s *Service) UpdateCompanyProfile(ctx context.Context, id *auth.Identity, req UpdateCompanyRequest) (*CompanyProfile, error) {
	current, err := s.CompanyProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	p := guard.Principal{UserID: id.UserID, Role: id.Role, CompanyID: current.ID}
	if err := guard.CanUpdateProfile(p, current.UserID, auth.RoleCompany); err != nil {
		return nil, err
	}

	switch {
	case req.CompanyName.Null:
		return nil, apperror.NewValidationError("companyName cannot be cleared", nil)
	case req.CityID.Null:
		return nil, apperror.NewValidationError("cityId cannot be cleared", nil)
	case req.IndustryLevel1ID.Null:
		return nil, apperror.NewValidationError("industryLevel1Id cannot be cleared", nil)
	}
	patch := CompanyPatch{
		CompanyName:      req.CompanyName,
		CompanySize:      req.CompanySize,
		CityID:           req.CityID,
		IndustryLevel1ID: req.IndustryLevel1ID,
		IndustryLevel2ID: req.IndustryLevel2ID,
		Description:      req.Description,
		LogoURL:          req.LogoURL,
		Website:          req.Website,
		BusinessLicense:  req.BusinessLicense,
	}
	storeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.store.UpdateCompany(storeCtx, current.ID, patch); err != nil {
		return nil, db.Translate(err, "company profile")
	}
	return s.CompanyProfile(ctx, id)
}

func talentPatch(req UpdateTalentRequest) (TalentPatch, error) {
	if req.RealName.Null {
		return TalentPatch{}, apperror.NewValidationError("realName cannot be cleared", nil)
	}
	patch := TalentPatch{
		RealName:            req.RealName,
		Gender:              req.Gender,
		Education:           req.Education,
		Major:               req.Major,
		WorkExperienceYears: req.WorkExperienceYears,
		CityID:              req.CityID,
		AvatarURL:           req.AvatarURL,
		Bio:                 req.Bio,
		SkillIDs:            req.SkillIDs,
	}
	switch {
	case req.BirthDate.Null:
		patch.BirthDate = validation.Clear[time.Time]()
	case req.BirthDate.Set:
		d, err := time.Parse(time.DateOnly, req.BirthDate.Value)
		if err != nil {
			return TalentPatch{}, apperror.NewValidationError("birthDate must be a date formatted as 2006-01-02", err)
		}
		if d.After(time.Now()) {
			return TalentPatch{}, apperror.NewValidationError("birthDate cannot be in the future", nil)
		}
		patch.BirthDate = validation.Some(d)
	}
	if req.SkillIDs.HasValue() {
		patch.SkillIDs = validation.Some(uniqueIDs(req.SkillIDs.Value))
	}
	return patch, nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
