package authapi

import "time"

type signupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Redirect string `json:"redirect"`
}

// userResponse is the public projection of a profile. It never carries
// credential material.
type userResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         *string   `json:"full_name"`
	AvatarURL        *string   `json:"avatar_url"`
	SubscriptionTier string    `json:"subscription_tier"`
	CreatedAt        time.Time `json:"created_at"`
}

type userEnvelope struct {
	User *userResponse `json:"user"`
}

type loginResponse struct {
	User       userResponse `json:"user"`
	RedirectTo string       `json:"redirect_to"`
	ExpiresAt  time.Time    `json:"expires_at"`
}
