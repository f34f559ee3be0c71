package authorize

import (
	"context"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/internal/urlutil"
	"github.com/yartat/IdentityServer4/messages"
)

// ParametersProcessor persists the parameters of an authorization request
// for the duration of the login interaction. With a message store configured
// the parameters are written server-side and referenced by an opaque id;
// without one they are inlined into the continuation query string, trading
// URL length against server-side state.
type ParametersProcessor struct {
	store   messages.Store[url.Values] // nil selects the stateless mode
	nowTime func() time.Time
}

// ParametersProcessorOption modifies a ParametersProcessor instance.
type ParametersProcessorOption func(*ParametersProcessor)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ParametersProcessorOption {
	return func(p *ParametersProcessor) {
		p.nowTime = nowFunc
	}
}

// NewParametersProcessor creates a processor. store may be nil.
func NewParametersProcessor(store messages.Store[url.Values], options ...ParametersProcessorOption) *ParametersProcessor {
	p := &ParametersProcessor{
		store:   store,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// StoreParameters returns the resume-authorization return URL together with
// the extra query string to append to it. A store write failure is fatal:
// once a store is configured there is no silent fallback.
func (p *ParametersProcessor) StoreParameters(ctx context.Context, request *ValidatedAuthorizeRequest) (string, string, error) {
	var otherParameters string
	if p.store != nil {
		msg := messages.New(request.Raw, p.nowTime().UTC())
		id, err := p.store.Write(ctx, msg)
		if err != nil {
			return "", "", errors.Wrap(err, "[StoreParameters] message store write")
		}
		otherParameters = urlutil.AddQueryParam("", AuthzIDParameter, id)
	} else {
		otherParameters = urlutil.AddQueryString("", request.Raw.Encode())
	}

	return AuthorizeCallbackPath, otherParameters, nil
}
