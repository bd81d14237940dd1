package domain

// UserClaimBag holds the claim values cached for a single user. Claims are
// keyed by claim URI; keys are unique and ordering is irrelevant.
type UserClaimBag struct {
	Username string
	Claims   map[string]string
}

// NewUserClaimBag builds an empty bag for the given username.
func NewUserClaimBag(username string) *UserClaimBag {
	return &UserClaimBag{
		Username: username,
		Claims:   make(map[string]string),
	}
}

// SetClaim sets or overwrites a single claim value.
func (b *UserClaimBag) SetClaim(claimURI, value string) {
	if b.Claims == nil {
		b.Claims = make(map[string]string)
	}
	b.Claims[claimURI] = value
}

// Claim returns the value stored for claimURI, or the empty string.
func (b *UserClaimBag) Claim(claimURI string) string {
	return b.Claims[claimURI]
}
