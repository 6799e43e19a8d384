package client

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-oauth2-client/internal/utils"
	"github.com/jrsteele09/go-oauth2-client/oauth2"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
)

// Option keys understood by GetOption and SetOption.
const (
	OptAuthURL       = "authurl"
	OptTokenURL      = "tokenurl"
	OptClientID      = "clientid"
	OptClientSecret  = "clientsecret"
	OptRedirectURI   = "redirecturi"
	OptScope         = "scope"
	OptState         = "state"
	OptRequestParams = "requestparams"
	OptAuthMethod    = "authmethod"
	OptUseRefresh    = "userefresh"
	OptTimeout       = "timeout"
	OptSendHeaders   = "sendheaders"
)

// DefaultTimeout is handed to the transport when no timeout option is set.
const DefaultTimeout = 30 * time.Second

// Param is one extra authorize URL parameter. A slice keeps the configured order.
type Param struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// Options configures a Client.
type Options struct {
	// AuthURL is the authorization endpoint the user is redirected to.
	AuthURL string `mapstructure:"authurl"`

	// TokenURL is the endpoint used for the code and refresh grants.
	TokenURL string `mapstructure:"tokenurl"`

	ClientID     string `mapstructure:"clientid"`
	ClientSecret string `mapstructure:"clientsecret"`
	RedirectURI  string `mapstructure:"redirecturi"`

	// Scope is joined with a single space on the wire.
	Scope []string `mapstructure:"scope"`

	State string `mapstructure:"state"`

	// RequestParams are appended to the authorize URL verbatim, in order.
	RequestParams []Param `mapstructure:"requestparams"`

	// AuthMethod is how Query presents the access token. Empty means get.
	AuthMethod oauth2.AuthMethod `mapstructure:"authmethod"`

	// UseRefresh enables automatic refresh. Nil means enabled.
	UseRefresh *bool `mapstructure:"userefresh"`

	// Timeout is passed to the transport on every call. Zero means DefaultTimeout.
	// Bare numbers are seconds; strings with a unit go through time.ParseDuration.
	Timeout time.Duration `mapstructure:"timeout"`

	// SendHeaders makes Authenticate redirect to the authorize URL when the request
	// carries no code.
	SendHeaders bool `mapstructure:"sendheaders"`

	// Extra holds caller-defined keys. They are never validated.
	Extra map[string]any `mapstructure:",remain"`

	// explicit records known keys that were set, so an explicit "" still reads back.
	explicit map[string]struct{}
}

// RefreshEnabled resolves UseRefresh.
func (o Options) RefreshEnabled() bool {
	return utils.ValueOr(o.UseRefresh, true)
}

// Method resolves AuthMethod.
func (o Options) Method() oauth2.AuthMethod {
	if o.AuthMethod == "" {
		return oauth2.AuthMethodGet
	}
	return oauth2.AuthMethod(strings.ToLower(string(o.AuthMethod)))
}

// CallTimeout resolves Timeout.
func (o Options) CallTimeout() time.Duration {
	if o.Timeout <= 0 {
		return DefaultTimeout
	}
	return o.Timeout
}

func (o Options) clone() Options {
	o.Scope = slices.Clone(o.Scope)
	o.RequestParams = slices.Clone(o.RequestParams)
	o.Extra = maps.Clone(o.Extra)
	o.explicit = maps.Clone(o.explicit)
	if o.UseRefresh != nil {
		o.UseRefresh = utils.Ptr(*o.UseRefresh)
	}
	return o
}

// get returns the value for key and whether it is set. String and list options
// count as set when non-empty or when they were explicitly assigned.
func (o Options) get(key string) (any, bool) {
	switch key {
	case OptAuthURL:
		return o.AuthURL, o.has(key, o.AuthURL != "")
	case OptTokenURL:
		return o.TokenURL, o.has(key, o.TokenURL != "")
	case OptClientID:
		return o.ClientID, o.has(key, o.ClientID != "")
	case OptClientSecret:
		return o.ClientSecret, o.has(key, o.ClientSecret != "")
	case OptRedirectURI:
		return o.RedirectURI, o.has(key, o.RedirectURI != "")
	case OptScope:
		return slices.Clone(o.Scope), o.has(key, len(o.Scope) > 0)
	case OptState:
		return o.State, o.has(key, o.State != "")
	case OptRequestParams:
		return slices.Clone(o.RequestParams), o.has(key, len(o.RequestParams) > 0)
	case OptAuthMethod:
		return o.Method(), true
	case OptUseRefresh:
		return o.RefreshEnabled(), true
	case OptTimeout:
		return o.CallTimeout(), true
	case OptSendHeaders:
		return o.SendHeaders, true
	}
	v, ok := o.Extra[key]
	return v, ok
}

func (o Options) has(key string, nonEmpty bool) bool {
	if nonEmpty {
		return true
	}
	_, ok := o.explicit[key]
	return ok
}

func (o *Options) markSet(key string) {
	if o.explicit == nil {
		o.explicit = make(map[string]struct{})
	}
	o.explicit[key] = struct{}{}
}

func isKnownOption(key string) bool {
	switch key {
	case OptAuthURL, OptTokenURL, OptClientID, OptClientSecret, OptRedirectURI, OptScope,
		OptState, OptRequestParams, OptAuthMethod, OptUseRefresh, OptTimeout, OptSendHeaders:
		return true
	}
	return false
}

// set stores value under key. Known keys are converted with weak typing.
func (o *Options) set(key string, value any) error {
	switch key {
	case OptAuthURL, OptTokenURL, OptClientID, OptClientSecret, OptRedirectURI, OptScope,
		OptState, OptAuthMethod, OptUseRefresh, OptTimeout, OptSendHeaders:
	case OptRequestParams:
		params, err := toParams(value)
		if err != nil {
			return err
		}
		o.RequestParams = params
		o.markSet(key)
		return nil
	default:
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[key] = value
		return nil
	}

	// Decode into a scratch value so that slices are replaced, not merged.
	var scratch Options
	if err := decodeOptions(map[string]any{key: value}, &scratch); err != nil {
		return err
	}
	switch key {
	case OptAuthURL:
		o.AuthURL = scratch.AuthURL
	case OptTokenURL:
		o.TokenURL = scratch.TokenURL
	case OptClientID:
		o.ClientID = scratch.ClientID
	case OptClientSecret:
		o.ClientSecret = scratch.ClientSecret
	case OptRedirectURI:
		o.RedirectURI = scratch.RedirectURI
	case OptScope:
		o.Scope = scratch.Scope
	case OptState:
		o.State = scratch.State
	case OptAuthMethod:
		o.AuthMethod = scratch.AuthMethod
	case OptUseRefresh:
		o.UseRefresh = scratch.UseRefresh
	case OptTimeout:
		o.Timeout = scratch.Timeout
	case OptSendHeaders:
		o.SendHeaders = scratch.SendHeaders
	}
	o.markSet(key)
	return nil
}

// OptionsFromMap builds Options from loosely typed settings, e.g. a decoded config
// file section. Unknown keys are kept in Extra.
func OptionsFromMap(settings map[string]any) (Options, error) {
	var o Options
	rest := make(map[string]any, len(settings))
	for k, v := range settings {
		if k == OptRequestParams {
			params, err := toParams(v)
			if err != nil {
				return Options{}, err
			}
			o.RequestParams = params
			continue
		}
		rest[k] = v
	}
	if err := decodeOptions(rest, &o); err != nil {
		return Options{}, err
	}
	for k := range settings {
		if isKnownOption(k) {
			o.markSet(k)
		}
	}
	return o, nil
}

func decodeOptions(input map[string]any, out *Options) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			secondsToDurationHookFunc(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(" "),
		),
	})
	if err != nil {
		return fmt.Errorf("[client decodeOptions] failed to create decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("[client decodeOptions] %w", err)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHookFunc reads numbers and unit-less numeric strings as seconds
// when the target is a time.Duration. Anything else is left for the next hook.
func secondsToDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
		case reflect.String:
			secs, err := strconv.ParseFloat(strings.TrimSpace(reflect.ValueOf(data).String()), 64)
			if err != nil {
				return data, nil
			}
			return time.Duration(secs * float64(time.Second)), nil
		}
		return data, nil
	}
}

// toParams accepts []Param, a single-level map (sorted by key, since maps carry no
// order) or a list of {key, value} maps.
func toParams(value any) ([]Param, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []Param:
		return slices.Clone(v), nil
	case map[string]string:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		params := make([]Param, 0, len(v))
		for _, k := range keys {
			params = append(params, Param{Key: k, Value: v[k]})
		}
		return params, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		params := make([]Param, 0, len(v))
		for _, k := range keys {
			params = append(params, Param{Key: k, Value: fmt.Sprint(v[k])})
		}
		return params, nil
	}

	var params []Param
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{WeaklyTypedInput: true, Result: &params})
	if err != nil {
		return nil, fmt.Errorf("[client toParams] failed to create decoder: %w", err)
	}
	if err := dec.Decode(value); err != nil {
		return nil, fmt.Errorf("[client toParams] %s must be a list of key/value pairs: %w", OptRequestParams, err)
	}
	return params, nil
}

func logIgnoredOption(key string, err error) {
	log.Warn().Err(err).Str("option", key).Msg("Ignoring option value that cannot be converted")
}
