package dto

// RegisterRequest describes the self-registration payload. Only students and
// lecturers may self-register; admin accounts are created by other admins.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	Role            string `json:"role" validate:"omitempty,oneof=student lecturer"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=32"`
	Bio             string `json:"bio" validate:"omitempty,max=2000"`
}

// LoginRequest describes the credential payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse carries an issued access token.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	User        UserResponse `json:"user"`
}

// ChangePasswordRequest describes the password change payload.
type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required"`
}
