package domain

// Lifecycle event names consumed from the identity event bus.
const (
	EventPostAuthentication          = "POST_AUTHENTICATION"
	EventPostUpdateCredential        = "POST_UPDATE_CREDENTIAL"
	EventPostUpdateCredentialByAdmin = "POST_UPDATE_CREDENTIAL_BY_ADMIN"
)

// UserLifecycleEvent is one authentication or credential-update notification.
// OperationSuccess is meaningful for authentication events only.
type UserLifecycleEvent struct {
	Name             string
	TenantID         int
	Username         string
	UserStoreDomain  string
	OperationSuccess bool
	Properties       map[string]string
}

// QualifiedUsername derives the store-domain qualified form of the event's
// username.
func (e UserLifecycleEvent) QualifiedUsername() string {
	return QualifyUsername(e.UserStoreDomain, e.Username)
}
