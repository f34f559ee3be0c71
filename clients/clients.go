package clients

// Client models a relying party registered with the provider. Only the
// registration data the interaction core consumes is kept here; token and
// scope configuration live with the issuance subsystem.
type Client struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`

	// Exact-match sets used by redirect validation. No wildcard or prefix
	// entries are honored.
	RedirectURIs           []string `json:"redirectURIs"`
	PostLogoutRedirectURIs []string `json:"postLogoutRedirectURIs"`

	// Logout notification endpoints for the end-session fan-out.
	FrontChannelLogoutURI             string `json:"frontChannelLogoutURI"`
	FrontChannelLogoutSessionRequired bool   `json:"frontChannelLogoutSessionRequired"`
	BackChannelLogoutURI              string `json:"backChannelLogoutURI"`
	BackChannelLogoutSessionRequired  bool   `json:"backChannelLogoutSessionRequired"`
}
