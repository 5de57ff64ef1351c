package domain

// Provider names how a principal was authenticated.
type Provider string

const (
	ProviderFirebase Provider = "firebase"
	ProviderDev      Provider = "dev"
)

// Principal is the authenticated caller. UID is the owner id stamped on projects.
type Principal struct {
	UID      string   `json:"uid"`
	Email    string   `json:"email,omitempty"`
	Provider Provider `json:"provider"`
}
