package domain

// CredentialKind discriminates the closed set of credential variants.
type CredentialKind string

const (
	CredentialKindPassword CredentialKind = "password"
	CredentialKindGoogle   CredentialKind = "google"
)

// Credential is one concrete login credential presented to a provider.
type Credential interface {
	Kind() CredentialKind
}

// PasswordCredential carries an email/password login attempt.
type PasswordCredential struct {
	Email    string
	Password string
}

func (PasswordCredential) Kind() CredentialKind { return CredentialKindPassword }

// GoogleCredential carries the authorization code returned by the Google
// callback. Exchanged outside the core login path.
type GoogleCredential struct {
	AuthCode string
	State    string
}

func (GoogleCredential) Kind() CredentialKind { return CredentialKindGoogle }
