package config

import (
	"context"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/jrsteele09/go-oauth2-client/client"
	"github.com/jrsteele09/go-oauth2-client/discovery"
	"github.com/rs/zerolog/log"
)

// Client is the [client] section of the config file after environment overrides.
type Client struct {
	Issuer  string
	Options client.Options
}

var _ ClientConfig = Client{}

func (c Client) GetIssuer() string {
	return c.Issuer
}

func (c Client) GetClientOptions() client.Options {
	return c.Options
}

// fileConfig is the on-disk layout. Option keys inside [client] are the client
// option names, e.g. clientid or requestparams.
type fileConfig struct {
	Issuer string         `toml:"issuer"`
	Client map[string]any `toml:"client"`
}

// DiscoverFunc resolves issuer endpoints. Tests may replace it.
var DiscoverFunc = discovery.Discover

// Load reads path (optional), applies environment overrides and, when an issuer is
// configured, fills a missing authurl or tokenurl from the issuer's metadata.
func Load(ctx context.Context, path string) (Config, error) {
	if path == "" {
		path = EnvVars{}.GetConfigFile()
	}

	fc := fileConfig{Client: map[string]any{}}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("[config Load] config file %s: %w", path, err)
		}
		md, err := toml.DecodeFile(path, &fc)
		if err != nil {
			return nil, fmt.Errorf("[config Load] failed to parse %s: %w", path, err)
		}
		for _, key := range md.Undecoded() {
			log.Warn().Str("key", key.String()).Str("file", path).Msg("Unknown config key")
		}
		if fc.Client == nil {
			fc.Client = map[string]any{}
		}
	}

	overlayEnv(fc.Client)
	issuer := GetEnv(issuerEnvVar, fc.Issuer)

	opts, err := client.OptionsFromMap(fc.Client)
	if err != nil {
		return nil, fmt.Errorf("[config Load] invalid [client] section: %w", err)
	}

	if issuer != "" && (opts.AuthURL == "" || opts.TokenURL == "") {
		endpoints, err := DiscoverFunc(ctx, issuer)
		if err != nil {
			return nil, fmt.Errorf("[config Load] %w", err)
		}
		if opts.AuthURL == "" {
			opts.AuthURL = endpoints.AuthURL
		}
		if opts.TokenURL == "" {
			opts.TokenURL = endpoints.TokenURL
		}
	}

	return mainConfig{Client: Client{Issuer: issuer, Options: opts}}, nil
}
