// Package grants models the durable grant record backing refresh tokens,
// consents, reference tokens and device codes.
package grants

import "time"

// Grant kind discriminators.
const (
	TypeAuthorizationCode = "authorization_code"
	TypeReferenceToken    = "reference_token"
	TypeRefreshToken      = "refresh_token"
	TypeUserConsent       = "user_consent"
	TypeDeviceCode        = "device_code"
)

// PersistedGrant is a durable grant record. The key is the sole identity:
// storing an existing key replaces the prior record in full.
type PersistedGrant struct {
	Key          string     `json:"key"`
	Type         string     `json:"type"`
	SubjectID    string     `json:"subjectId"`
	SessionID    string     `json:"sessionId"`
	ClientID     string     `json:"clientId"`
	Description  string     `json:"description"`
	CreationTime time.Time  `json:"creationTime"`
	Expiration   *time.Time `json:"expiration,omitempty"`
	Data         string     `json:"data"`
}

// Expired reports whether the grant is past its expiration. Grants without
// an expiration never expire.
func (g *PersistedGrant) Expired(now time.Time) bool {
	return g.Expiration != nil && now.After(*g.Expiration)
}
