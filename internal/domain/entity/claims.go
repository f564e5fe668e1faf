package entity

// DefaultRole is granted when the charge metadata names no role.
const DefaultRole = "teacher"

const ClaimSubscriptionActive = "active"

// Claims is the app_metadata projection of a user's subscription held by the
// identity provider. An absent subscription is represented by clearing it.
type Claims struct {
	Subscription string `json:"subscription"`
	Plan         string `json:"plan"`
	Role         string `json:"role"`
}

// ActiveClaims returns the claim set for an active subscription on planID.
func ActiveClaims(planID, role string) Claims {
	if role == "" {
		role = DefaultRole
	}
	return Claims{
		Subscription: ClaimSubscriptionActive,
		Plan:         planID,
		Role:         role,
	}
}

// ClaimKeys lists every key this service owns inside app_metadata.
func ClaimKeys() []string {
	return []string{"subscription", "plan", "role"}
}
