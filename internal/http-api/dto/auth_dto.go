package dto

// Data Transfer Objects for signup and token requests

// SignupRequest: payload for passwordless registration
type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// SignupResponse echoes the registered identity
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code for an access
// token. Fields are unbound here; the service reports missing ones per field.
type TokenRequest struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// TokenResponse carries the bearer access token
type TokenResponse struct {
	Token string `json:"token"`
}
