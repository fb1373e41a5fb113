package domain

// UserType distinguishes human accounts from machine accounts.
type UserType string

const (
	UserTypeHuman   UserType = "HUMAN"
	UserTypeService UserType = "SERVICE"
)

// AuthMode identifies the credential strategy an identity authenticates with.
type AuthMode string

const (
	AuthModePassword AuthMode = "password"
	AuthModeGoogle   AuthMode = "google"
)

// Identity is a verified user-or-service record resolved from a token.
// Immutable once resolved.
type Identity struct {
	ID          string
	DisplayName string
	UserType    UserType
	AuthMode    AuthMode
}

// Principal is the authenticated-and-scoped view of an identity for one
// target service. It lives for the duration of a request and is never
// persisted.
type Principal struct {
	Identity  Identity
	Role      string
	SessionID string
}

// User is the stored account record behind an identity.
type User struct {
	ID          string
	Email       string
	DisplayName string
	UserType    UserType
	AuthMode    AuthMode
}

// Identity returns the resolved identity view of the user.
func (u *User) AsIdentity() Identity {
	return Identity{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		UserType:    u.UserType,
		AuthMode:    u.AuthMode,
	}
}

// Service is a registered downstream service that tokens are scoped to.
type Service struct {
	ID     string
	Name   string
	Secret string
}
