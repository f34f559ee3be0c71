package identity

// Standard claim types used throughout the server.
const (
	ClaimSubject              = "sub"
	ClaimEmail                = "email"
	ClaimName                 = "name"
	ClaimGivenName            = "given_name"
	ClaimNameIdentifier       = "name_id"
	ClaimIdentityProvider     = "idp"
	ClaimAuthenticationMethod = "amr"
	ClaimAuthenticationTime   = "auth_time"

	// ClaimLegacyAuthenticationMethod is issued by external authentication
	// middleware and carries the middleware name (e.g. "Google") as its value.
	// Sign-in augmentation converts it into idp/amr claims.
	ClaimLegacyAuthenticationMethod = "authentication_method"
)

// Well-known claim values.
const (
	LocalIdentityProvider        = "local"
	PasswordAuthenticationMethod = "password"
	ExternalAuthenticationMethod = "external"
)

// Claim is a single statement about a subject.
type Claim struct {
	Type  string
	Value string
}

// Identity is a group of claims issued by a single authority.
type Identity struct {
	Claims []Claim
}

// FindFirst returns the first claim of the given type, or nil.
func (i *Identity) FindFirst(claimType string) *Claim {
	for idx := range i.Claims {
		if i.Claims[idx].Type == claimType {
			return &i.Claims[idx]
		}
	}
	return nil
}

// AddClaim appends a claim to the identity.
func (i *Identity) AddClaim(claimType, value string) {
	i.Claims = append(i.Claims, Claim{Type: claimType, Value: value})
}

// RemoveFirst removes the first claim of the given type if present.
func (i *Identity) RemoveFirst(claimType string) {
	for idx := range i.Claims {
		if i.Claims[idx].Type == claimType {
			i.Claims = append(i.Claims[:idx], i.Claims[idx+1:]...)
			return
		}
	}
}

// Principal is the authenticated user: one or more identities, each a set of
// claims. The server only supports principals with exactly one identity.
type Principal struct {
	Identities []*Identity
}

// NewPrincipal creates a principal with a single identity holding the given claims.
func NewPrincipal(claims ...Claim) *Principal {
	return &Principal{Identities: []*Identity{{Claims: claims}}}
}

// FindFirst returns the first claim of the given type across all identities, or nil.
func (p *Principal) FindFirst(claimType string) *Claim {
	for _, id := range p.Identities {
		if c := id.FindFirst(claimType); c != nil {
			return c
		}
	}
	return nil
}

// SubjectID returns the value of the sub claim, or the empty string.
func (p *Principal) SubjectID() string {
	if c := p.FindFirst(ClaimSubject); c != nil {
		return c.Value
	}
	return ""
}
