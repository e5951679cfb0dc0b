package models

// Profile is the authenticated visitor as reported by the session query.
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type IdentityStatus string

const (
	IdentityLoading       IdentityStatus = "loading"
	IdentityAnonymous     IdentityStatus = "anonymous"
	IdentityAuthenticated IdentityStatus = "authenticated"
)

// IdentitySnapshot is the resolver's view of who the visitor is.
type IdentitySnapshot struct {
	Status  IdentityStatus `json:"status"`
	Profile *Profile       `json:"profile,omitempty"`
}

// IsResolved reports whether the session query has completed.
func (s IdentitySnapshot) IsResolved() bool {
	return s.Status != IdentityLoading
}

// Authenticated reports whether a profile with an id is available.
func (s IdentitySnapshot) Authenticated() bool {
	return s.Status == IdentityAuthenticated && s.Profile != nil && s.Profile.ID != ""
}
