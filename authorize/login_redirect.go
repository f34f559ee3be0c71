package authorize

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
	"github.com/yartat/IdentityServer4/hosting"
	"github.com/yartat/IdentityServer4/internal/config"
	"github.com/yartat/IdentityServer4/internal/urlutil"
)

// LoginURLProcessor is an optional hook invoked with the composed login URL
// and the full raw request parameters as the last step before redirecting.
// Its output is the final redirect target, verbatim. Deployments use it for
// multi-tenant routing and similar rewrites.
type LoginURLProcessor func(loginURL string, raw url.Values) string

// LoginRedirectBuilder composes the absolute login-page URL an interrupted
// authorization request redirects to.
type LoginRedirectBuilder struct {
	options      *config.Options
	processor    *ParametersProcessor
	urlProcessor LoginURLProcessor // optional
}

// LoginRedirectBuilderOption modifies a LoginRedirectBuilder instance.
type LoginRedirectBuilderOption func(*LoginRedirectBuilder)

// WithLoginURLProcessor installs the login-URL post-processing hook.
func WithLoginURLProcessor(processor LoginURLProcessor) LoginRedirectBuilderOption {
	return func(b *LoginRedirectBuilder) {
		b.urlProcessor = processor
	}
}

// NewLoginRedirectBuilder creates a builder.
func NewLoginRedirectBuilder(options *config.Options, processor *ParametersProcessor, opts ...LoginRedirectBuilderOption) (*LoginRedirectBuilder, error) {
	if options == nil {
		return nil, errors.New("[NewLoginRedirectBuilder] options are required")
	}
	if processor == nil {
		return nil, errors.New("[NewLoginRedirectBuilder] parameters processor is required")
	}

	b := &LoginRedirectBuilder{
		options:   options,
		processor: processor,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// BuildLoginRedirect stores the request parameters and returns the redirect
// target for the login page, carrying the return URL as a query parameter.
// The return URL is made absolute when the login page lives on a different
// origin, so the browser never resolves it against the wrong host.
func (b *LoginRedirectBuilder) BuildLoginRedirect(ctx context.Context, request *ValidatedAuthorizeRequest) (string, error) {
	returnURL, otherParameters, err := b.processor.StoreParameters(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "[BuildLoginRedirect] store parameters")
	}

	loginURL := b.options.UserInteraction.LoginURL
	resultURL := loginURL
	if urlutil.IsPresent(returnURL) {
		if basePath := hosting.BasePathFrom(ctx); basePath != "" {
			returnURL = urlutil.RemoveTrailingSlash(urlutil.CleanURLPath(basePath)) + returnURL
		}
		if !urlutil.IsLocalURL(loginURL) {
			returnURL = urlutil.EnsureTrailingSlash(b.options.BaseURI) + urlutil.RemoveLeadingSlash(returnURL)
		}

		if otherParameters != "" {
			returnURL += otherParameters
		}

		resultURL = urlutil.AddQueryParam(loginURL, b.options.UserInteraction.LoginReturnURLParameter, returnURL)
	}

	if b.urlProcessor != nil {
		resultURL = b.urlProcessor(resultURL, request.Raw)
	}

	return resultURL, nil
}
