package config

import (
	"github.com/jrsteele09/go-oauth2-client/client"
)

type Config interface {
	EnvConfig
	ClientConfig
}

type EnvConfig interface {
	GetAppName() string
	GetConfigFile() string
	GetTokenFile() string
	GetLogLevel() string
	GetEnv() string
}

type ClientConfig interface {
	// GetIssuer is the OpenID Connect issuer used for endpoint discovery, if any.
	GetIssuer() string
	GetClientOptions() client.Options
}

type mainConfig struct {
	EnvVars
	Client
}

// New returns a configuration built from environment variables only.
func New() (Config, error) {
	settings := map[string]any{}
	overlayEnv(settings)
	opts, err := client.OptionsFromMap(settings)
	if err != nil {
		return nil, err
	}
	return mainConfig{Client: Client{Issuer: GetEnv(issuerEnvVar, ""), Options: opts}}, nil
}
