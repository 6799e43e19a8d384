package config

import (
	"os"
	"strings"

	"github.com/jrsteele09/go-oauth2-client/client"
)

const (
	appNameVar     = "APP_NAME"
	configFileVar  = "OAUTH2_CONFIG"
	tokenFileVar   = "OAUTH2_TOKEN_FILE"
	logLevelVar    = "OAUTH2_LOG_LEVEL"
	issuerEnvVar   = "OAUTH2_ISSUER"
	defaultAppName = "OAuth2 Client"
)

// clientEnvVars maps environment variables onto client option keys. A set variable
// overrides the config file.
var clientEnvVars = map[string]string{
	"OAUTH2_AUTH_URL":      client.OptAuthURL,
	"OAUTH2_TOKEN_URL":     client.OptTokenURL,
	"OAUTH2_CLIENT_ID":     client.OptClientID,
	"OAUTH2_CLIENT_SECRET": client.OptClientSecret,
	"OAUTH2_REDIRECT_URI":  client.OptRedirectURI,
	"OAUTH2_SCOPE":         client.OptScope,
	"OAUTH2_STATE":         client.OptState,
	"OAUTH2_AUTH_METHOD":   client.OptAuthMethod,
	"OAUTH2_USE_REFRESH":   client.OptUseRefresh,
	"OAUTH2_TIMEOUT":       client.OptTimeout,
	"OAUTH2_SEND_HEADERS":  client.OptSendHeaders,
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, defaultAppName)
}

// GetConfigFile is the TOML file used when no --config flag is given.
func (EnvVars) GetConfigFile() string {
	return GetEnv(configFileVar, "")
}

// GetTokenFile is where the CLI keeps the current token.
func (EnvVars) GetTokenFile() string {
	return GetEnv(tokenFileVar, "./token.json")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func overlayEnv(settings map[string]any) {
	for envVar, key := range clientEnvVars {
		if value := strings.TrimSpace(GetEnv(envVar, "")); value != "" {
			settings[key] = value
		}
	}
}
