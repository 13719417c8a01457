package authapi

import "folio/cmd/identity"

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Email:            u.Email,
		FullName:         u.FullName,
		AvatarURL:        u.AvatarURL,
		SubscriptionTier: u.SubscriptionTier,
		CreatedAt:        u.CreatedAt,
	}
}
