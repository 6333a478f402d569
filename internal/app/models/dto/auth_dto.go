package dto

import "github.com/yigit/campusconnect/internal/app/models"

// SignupRequest represents a new account registration
type SignupRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,collegeemail"`
	Password string `json:"password" binding:"required"`
}

// SignupResponse is returned after an account is created. The verification
// token is only echoed back in development.
type SignupResponse struct {
	Message           string `json:"message"`
	VerificationToken string `json:"verificationToken,omitempty"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents successful authentication response
type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"tokenType" example:"Bearer"`
	ExpiresIn int         `json:"expiresIn"`
	User      *MeResponse `json:"user"`
}

// NewLoginResponse builds the login payload
func NewLoginResponse(token string, expiresIn int, user *models.User) *LoginResponse {
	return &LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
		User:      NewMeResponse(user),
	}
}
