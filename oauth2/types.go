package oauth2

// ResponseType represents the OAuth 2.0 response type requested at the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType requests an authorization code.
	// Example: /oauth/authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, client_id, client_secret, redirect_uri
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for a new access token.
	// Token request includes: refresh_token, client_id, client_secret
	// Servers may or may not rotate the refresh token in the response.
	RefreshTokenGrant GrantType = "refresh_token"
)

// AuthMethod controls how the access token is presented to a protected API.
type AuthMethod string

const (
	// AuthMethodGet sends the token as an access_token query parameter.
	AuthMethodGet AuthMethod = "get"

	// AuthMethodPost sends the token as an access_token form field in the request body.
	AuthMethodPost AuthMethod = "post"

	// AuthMethodBearer sends the token in the Authorization header (RFC 6750 section 2.1).
	AuthMethodBearer AuthMethod = "bearer"
)

// Form and query parameter names used on the wire.
const (
	ParamResponseType = "response_type"
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamRedirectURI  = "redirect_uri"
	ParamScope        = "scope"
	ParamState        = "state"
	ParamCode         = "code"
	ParamGrantType    = "grant_type"
	ParamRefreshToken = "refresh_token"
	ParamAccessToken  = "access_token"
)
