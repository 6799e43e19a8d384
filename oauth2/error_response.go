package oauth2

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/url"
	"strings"
)

// ErrorResponse is the error document an authorization server returns from the token
// endpoint (RFC 6749 section 5.2).
type ErrorResponse struct {
	// Error is the ASCII error code.
	// Example: "invalid_grant"
	Error string `json:"error"`

	// ErrorDescription is optional human readable text.
	// Example: "authorization code expired"
	ErrorDescription string `json:"error_description,omitempty"`

	// ErrorURI optionally points at a page describing the error.
	ErrorURI string `json:"error_uri,omitempty"`
}

// String renders the error as "code - description", or just the code.
func (e ErrorResponse) String() string {
	if e.ErrorDescription == "" {
		return e.Error
	}
	return fmt.Sprintf("%s - %s", e.Error, e.ErrorDescription)
}

// ParseErrorResponse extracts an OAuth2 error document from a token endpoint body.
// It understands the same two encodings as successful token responses. ok is false
// when the body carries no "error" member.
func ParseErrorResponse(contentType string, body []byte) (ErrorResponse, bool) {
	var er ErrorResponse
	if IsJSONContentType(contentType) {
		if err := json.Unmarshal(body, &er); err != nil {
			return ErrorResponse{}, false
		}
	} else {
		values, err := url.ParseQuery(strings.TrimSpace(string(body)))
		if err != nil {
			return ErrorResponse{}, false
		}
		er = ErrorResponse{
			Error:            values.Get("error"),
			ErrorDescription: values.Get("error_description"),
			ErrorURI:         values.Get("error_uri"),
		}
	}
	return er, er.Error != ""
}

// IsJSONContentType reports whether a Content-Type header names a JSON media type,
// either application/json or a structured +json suffix.
func IsJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
