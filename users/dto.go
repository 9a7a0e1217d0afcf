package users

import (
	"time"

	"github.com/user/talenthub/auth"
	"github.com/user/talenthub/lookups"
	"github.com/user/talenthub/validation"
)

// TalentProfile is a job seeker's profile.
type TalentProfile struct {
	ID                  int64           `json:"id"`
	UserID              int64           `json:"userId"`
	RealName            string          `json:"realName"`
	Gender              *string         `json:"gender"`
	BirthDate           *string         `json:"birthDate" example:"1995-04-30"`
	Education           *string         `json:"education"`
	Major               *string         `json:"major"`
	WorkExperienceYears *int            `json:"workExperienceYears"`
	CityID              *int64          `json:"cityId"`
	CityName            *string         `json:"cityName"`
	AvatarURL           *string         `json:"avatarUrl"`
	Bio                 *string         `json:"bio"`
	Skills              []lookups.Skill `json:"skills"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// CompanyProfile is an employer's profile.
type CompanyProfile struct {
	ID                 int64     `json:"id"`
	UserID             int64     `json:"userId"`
	CompanyName        string    `json:"companyName"`
	CompanySize        *string   `json:"companySize"`
	CityID             int64     `json:"cityId"`
	CityName           string    `json:"cityName"`
	ProvinceName       string    `json:"provinceName"`
	IndustryLevel1ID   int64     `json:"industryLevel1Id"`
	IndustryLevel1Name string    `json:"industryLevel1Name"`
	IndustryLevel2ID   *int64    `json:"industryLevel2Id"`
	IndustryLevel2Name *string   `json:"industryLevel2Name"`
	Description        *string   `json:"description"`
	LogoURL            *string   `json:"logoUrl"`
	Website            *string   `json:"website"`
	BusinessLicense    *string   `json:"businessLicense"`
	VerificationStatus string    `json:"verificationStatus"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UpdateTalentRequest is the body of PUT /api/profile/talent.
// Omitted fields are left alone; null clears a field.
type UpdateTalentRequest struct {
	RealName            validation.Optional[string]  `json:"realName" validate:"omitempty,min=1,max=50" swaggertype:"string"`
	Gender              validation.Optional[string]  `json:"gender" validate:"omitempty,oneof=male female other" swaggertype:"string"`
	BirthDate           validation.Optional[string]  `json:"birthDate" validate:"omitempty,datetime=2006-01-02" swaggertype:"string"`
	Education           validation.Optional[string]  `json:"education" validate:"omitempty,oneof=high_school associate bachelor master phd" swaggertype:"string"`
	Major               validation.Optional[string]  `json:"major" validate:"omitempty,max=100" swaggertype:"string"`
	WorkExperienceYears validation.Optional[int]     `json:"workExperienceYears" validate:"omitempty,gte=0,lte=60" swaggertype:"integer"`
	CityID              validation.Optional[int64]   `json:"cityId" validate:"omitempty,gt=0" swaggertype:"integer"`
	AvatarURL           validation.Optional[string]  `json:"avatarUrl" validate:"omitempty,url" swaggertype:"string"`
	Bio                 validation.Optional[string]  `json:"bio" validate:"omitempty,max=2000" swaggertype:"string"`
	SkillIDs            validation.Optional[[]int64] `json:"skillIds" validate:"omitempty,max=50,dive,gt=0" swaggertype:"array,integer"`
}

// UpdateCompanyRequest is the body of PUT /api/profile/company.
// companyName, cityId and industryLevel1Id can be changed but not cleared.
type UpdateCompanyRequest struct {
	CompanyName      validation.Optional[string] `json:"companyName" validate:"omitempty,min=1,max=100" swaggertype:"string"`
	CompanySize      validation.Optional[string] `json:"companySize" validate:"omitempty,max=50" swaggertype:"string"`
	CityID           validation.Optional[int64]  `json:"cityId" validate:"omitempty,gt=0" swaggertype:"integer"`
	IndustryLevel1ID validation.Optional[int64]  `json:"industryLevel1Id" validate:"omitempty,gt=0" swaggertype:"integer"`
	IndustryLevel2ID validation.Optional[int64]  `json:"industryLevel2Id" validate:"omitempty,gt=0" swaggertype:"integer"`
	Description      validation.Optional[string] `json:"description" validate:"omitempty,max=5000" swaggertype:"string"`
	LogoURL          validation.Optional[string] `json:"logoUrl" validate:"omitempty,url" swaggertype:"string"`
	Website          validation.Optional[string] `json:"website" validate:"omitempty,url" swaggertype:"string"`
	BusinessLicense  validation.Optional[string] `json:"businessLicense" validate:"omitempty,max=255" swaggertype:"string"`
}

// TalentPatch is a validated talent update ready for the store.
type TalentPatch struct {
	RealName            validation.Optional[string]
	Gender              validation.Optional[string]
	BirthDate           validation.Optional[time.Time]
	Education           validation.Optional[string]
	Major               validation.Optional[string]
	WorkExperienceYears validation.Optional[int]
	CityID              validation.Optional[int64]
	AvatarURL           validation.Optional[string]
	Bio                 validation.Optional[string]
	SkillIDs            validation.Optional[[]int64] // null or empty removes every skill
}

// CompanyPatch is a validated company update ready for the store.
type CompanyPatch struct {
	CompanyName      validation.Optional[string]
	CompanySize      validation.Optional[string]
	CityID           validation.Optional[int64]
	IndustryLevel1ID validation.Optional[int64]
	IndustryLevel2ID validation.Optional[int64]
	Description      validation.Optional[string]
	LogoURL          validation.Optional[string]
	Website          validation.Optional[string]
	BusinessLicense  validation.Optional[string]
}

// MeUser is the user part of the /api/auth/me payload.
type MeUser struct {
	ID        int64     `json:"id"`
	Phone     string    `json:"phone"`
	UserType  auth.Role `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
	// Profile is a TalentProfile or a CompanyProfile depending on UserType.
	Profile any `json:"profile"`
}

// MeResponse is returned by GET /api/auth/me and GET /api/auth/profile.
// User is null for anonymous callers of /me.
type MeResponse struct {
	User *MeUser `json:"user"`
}
