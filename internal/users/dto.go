package users

import "github.com/spicepalace/spicepalace-backend/pkg/db/models"

// RegisterInput carries the password signup form.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// UpdateProfileInput is a partial update; nil fields are left untouched.
type UpdateProfileInput struct {
	FullName   *string `json:"fullName,omitempty"`
	Address    *string `json:"address,omitempty"`
	City       *string `json:"city,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
}

// AuthResult is returned by every flow that ends in a signed-in user.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}
