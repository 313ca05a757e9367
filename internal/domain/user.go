package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"

	AuthTypeEmail  = "email"
	AuthTypeGoogle = "google"
)

type User struct {
	UserID       string     `json:"id" dynamodbav:"user_id"`
	Name         string     `json:"name" dynamodbav:"name"`
	Email        string     `json:"email" dynamodbav:"email"`
	Phone        *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash string     `json:"-" dynamodbav:"password_hash"`
	Role         string     `json:"role" dynamodbav:"role"`
	AuthType     string     `json:"auth_type" dynamodbav:"auth_type"` // "email" | "google"
	GoogleSub    string     `json:"-" dynamodbav:"google_sub"`
	AvatarURL    *string    `json:"avatar_url,omitempty" dynamodbav:"avatar_url"`
	LastLogin    *time.Time `json:"last_login,omitempty" dynamodbav:"last_login"`
	IsActive     *bool      `json:"is_active" dynamodbav:"is_active"` // nil on accounts created before deactivation existed
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Active reports whether the account may sign in. Accounts without the flag
// predate deactivation and count as active.
func (u *User) Active() bool { return u.IsActive == nil || *u.IsActive }

type SignupRequest struct {
	Name     string  `json:"name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleAuthRequest struct {
	Token string `json:"token" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type PasswordChangeCodeRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

type ChangePasswordRequest struct {
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

type UpdateProfileRequest struct {
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	Phone           *string `json:"phone"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword" validate:"omitempty,min=6,max=72"`
}

// UpdateUserRequest is the admin patch for an account. Only non-nil fields change.
type UpdateUserRequest struct {
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}
