package domain

import "strings"

// UserStoreDomainSeparator splits a store domain prefix from the local part
// of a qualified username, e.g. "SECONDARY/dave".
const UserStoreDomainSeparator = "/"

// PrimaryUserStoreDomain is the well-known name of a tenant's default store.
const PrimaryUserStoreDomain = "PRIMARY"

// AssociationAgentAccount marks the reserved account used for tenant
// association bookkeeping. Activity for it is never recorded.
const AssociationAgentAccount = "system-association-agent"

// ExtractUserStoreDomain returns the store domain prefix of a qualified
// username, or the empty string when the username carries no prefix.
func ExtractUserStoreDomain(username string) string {
	idx := strings.Index(username, UserStoreDomainSeparator)
	if idx <= 0 {
		return ""
	}
	return username[:idx]
}

// StoreDomainOrPrimary resolves the owning store domain of a username,
// defaulting to the primary store when no prefix is present.
func StoreDomainOrPrimary(username string) string {
	if d := ExtractUserStoreDomain(username); d != "" {
		return d
	}
	return PrimaryUserStoreDomain
}

// QualifyUsername prefixes username with storeDomain unless it is already
// qualified or the domain is blank.
func QualifyUsername(storeDomain, username string) string {
	if storeDomain == "" || strings.Contains(username, UserStoreDomainSeparator) {
		return username
	}
	return storeDomain + UserStoreDomainSeparator + username
}

// IsReservedAccount reports whether username belongs to a reserved
// system or association account.
func IsReservedAccount(username string) bool {
	return strings.Contains(username, AssociationAgentAccount)
}
