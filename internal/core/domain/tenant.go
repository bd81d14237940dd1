package domain

// Tenant identifies an isolated partition of users by numeric id and domain name.
type Tenant struct {
	ID     int
	Domain string
}

// Claim URIs shared with the user directory. Fixed identifiers, not configurable.
const (
	ClaimLastLoginTime          = "urn:identity:claims:lastLoginTime"
	ClaimLastPasswordUpdateTime = "urn:identity:claims:lastPasswordUpdateTime"
	ClaimEmailAddress           = "urn:identity:claims:emailAddress"
)
