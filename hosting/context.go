package hosting

import (
	"context"
	"sync"

	"github.com/yartat/IdentityServer4/internal/urlutil"
)

type contextKey int

const requestContextKey contextKey = iota

// RequestContext carries per-request transport metadata and the ephemeral
// flags the session services exchange during one request. It is installed by
// the server middleware and threaded through the call chain, never stored
// process-wide.
type RequestContext struct {
	RemoteAddr   string
	ForwardedFor string // raw X-Forwarded-For header value
	UserAgent    string
	BasePath     string

	lock          sync.Mutex
	signOutCalled bool
}

// WithRequest installs the request context.
func WithRequest(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey, rc)
}

// RequestFrom returns the current request context, or nil outside a request.
func RequestFrom(ctx context.Context) *RequestContext {
	rc, _ := ctx.Value(requestContextKey).(*RequestContext)
	return rc
}

// IP returns the client address: the first X-Forwarded-For entry when
// present, the transport remote address otherwise.
func (rc *RequestContext) IP() string {
	if rc == nil {
		return ""
	}
	if entries := urlutil.SplitCSV(rc.ForwardedFor); len(entries) > 0 && entries[0] != "" {
		return entries[0]
	}
	return rc.RemoteAddr
}

// SetSignOutCalled marks that sign-out was explicitly invoked during this
// request. Consumed by the federated sign-out coordination.
func (rc *RequestContext) SetSignOutCalled() {
	if rc == nil {
		return
	}
	rc.lock.Lock()
	rc.signOutCalled = true
	rc.lock.Unlock()
}

// SignOutCalled reports whether sign-out was invoked during this request.
func (rc *RequestContext) SignOutCalled() bool {
	if rc == nil {
		return false
	}
	rc.lock.Lock()
	defer rc.lock.Unlock()
	return rc.signOutCalled
}

// BasePathFrom returns the deployment base path recorded for this request.
func BasePathFrom(ctx context.Context) string {
	if rc := RequestFrom(ctx); rc != nil {
		return rc.BasePath
	}
	return ""
}
