package auth

// RegisterRequest is the body of POST /api/auth/register.
// Talents must send realName; companies must send companyName, cityId and industryLevel1Id.
type RegisterRequest struct {
	Phone            string `json:"phone" validate:"required,phone" example:"13800138000"`
	Password         string `json:"password" validate:"required,min=8,max=72" example:"s3cret-pass"`
	UserType         Role   `json:"userType" validate:"required,oneof=talent company" example:"talent"`
	RealName         string `json:"realName,omitempty" validate:"omitempty,min=1,max=50"`
	CompanyName      string `json:"companyName,omitempty" validate:"omitempty,min=1,max=100"`
	CityID           int64  `json:"cityId,omitempty" validate:"omitempty,gt=0"`
	IndustryLevel1ID int64  `json:"industryLevel1Id,omitempty" validate:"omitempty,gt=0"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required" example:"13800138000"`
	Password string `json:"password" validate:"required" example:"s3cret-pass"`
}

// RefreshRequest is the body of POST /api/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest is the optional body of POST /api/auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}

// TokenResponse is returned by login, register and refresh.
type TokenResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType" example:"Bearer"`
	ExpiresIn    int64  `json:"expiresIn" example:"900"` // access token lifetime in seconds
}
