package identity

// Property keys recorded on sign-in.
const (
	PropertyIP     = "ip"
	PropertyDevice = "device"
)

// Properties carries metadata for a single sign-in or sign-out operation,
// persisted alongside the resulting authentication state.
type Properties struct {
	Items map[string]string
}

// NewProperties creates an empty property bag.
func NewProperties() *Properties {
	return &Properties{Items: map[string]string{}}
}

// Set stores a property value, allocating the bag if needed.
func (p *Properties) Set(key, value string) {
	if p.Items == nil {
		p.Items = map[string]string{}
	}
	p.Items[key] = value
}

// Get returns a property value, or the empty string.
func (p *Properties) Get(key string) string {
	if p == nil || p.Items == nil {
		return ""
	}
	return p.Items[key]
}
