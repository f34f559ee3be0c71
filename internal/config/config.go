// Package config holds the server options, parsed from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Options configures the interaction core. BaseURI is the externally visible
// base of this deployment and is required whenever the login page lives on a
// different origin.
type Options struct {
	AppName                string `env:"APP_NAME" envDefault:"IdentityServer"`
	Port                   string `env:"PORT" envDefault:"8080"`
	BaseURI                string `env:"IDSRV_BASE_URI"`
	IssuerURI              string `env:"IDSRV_ISSUER_URI"`
	LowerCaseIssuerURI     bool   `env:"IDSRV_LOWERCASE_ISSUER_URI" envDefault:"true"`
	CheckSessionCookieName string `env:"IDSRV_SESSION_COOKIE_NAME" envDefault:"idsrv.session"`

	UserInteraction UserInteractionOptions `envPrefix:"IDSRV_"`
	Redis           RedisOptions           `envPrefix:"IDSRV_"`
}

// UserInteractionOptions locates the login/logout pages and names the query
// parameters used to continue an interrupted flow.
type UserInteractionOptions struct {
	LoginURL                string `env:"LOGIN_URL" envDefault:"/account/login"`
	LoginReturnURLParameter string `env:"LOGIN_RETURN_URL_PARAM" envDefault:"returnUrl"`
	LogoutURL               string `env:"LOGOUT_URL" envDefault:"/account/logout"`
	LogoutIDParameter       string `env:"LOGOUT_ID_PARAM" envDefault:"logoutId"`
}

// RedisOptions selects the optional Redis backing for the stores. An empty
// Addr keeps the in-memory stores.
type RedisOptions struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// Load parses the options from the environment.
func Load() (*Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return nil, errors.Wrap(err, "[config.Load] env.Parse")
	}
	return &o, nil
}
