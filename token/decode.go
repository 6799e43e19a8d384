package token

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/jrsteele09/go-oauth2-client/oauth2"
	"github.com/mitchellh/mapstructure"
)

// ErrMalformedTokenResponse is returned when a token endpoint body cannot be decoded
// into a usable token.
var ErrMalformedTokenResponse = errors.New("malformed token response")

// DecodeResponse parses a token endpoint body. JSON media types are decoded as a
// JSON object, anything else as application/x-www-form-urlencoded.
// The result is not normalized; see Normalize.
func DecodeResponse(contentType string, body []byte) (Token, error) {
	var (
		fields map[string]any
		err    error
	)
	if oauth2.IsJSONContentType(contentType) {
		fields, err = DecodeJSON(body)
	} else {
		fields, err = DecodeForm(body)
	}
	if err != nil {
		return Token{}, err
	}

	t, err := FromMap(fields)
	if err != nil {
		return Token{}, err
	}
	if t.AccessToken == "" {
		return Token{}, fmt.Errorf("%w: no access_token in response", ErrMalformedTokenResponse)
	}
	return t, nil
}

// DecodeJSON decodes a JSON object. Numbers are kept as json.Number so that large
// integers survive untouched.
func DecodeJSON(body []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedTokenResponse)
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTokenResponse, err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: empty JSON object", ErrMalformedTokenResponse)
	}
	return fields, nil
}

// DecodeForm decodes key=value&key=value data. When a key repeats the first value wins.
func DecodeForm(body []byte) (map[string]any, error) {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedTokenResponse)
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTokenResponse, err)
	}

	fields := make(map[string]any, len(values))
	for k, v := range values {
		if k == "" || len(v) == 0 {
			continue
		}
		fields[k] = v[0]
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no form fields", ErrMalformedTokenResponse)
	}
	return fields, nil
}

// FromMap builds a Token from decoded fields. Values are weakly typed, so "3600" and
// json.Number("3600") both fill ExpiresIn. Unknown members land in Extra.
func FromMap(fields map[string]any) (Token, error) {
	var t Token
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &t,
		DecodeHook:       mapstructure.DecodeHookFuncType(joinSliceToString),
	})
	if err != nil {
		return Token{}, fmt.Errorf("[token FromMap] failed to create decoder: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedTokenResponse, err)
	}
	return t, nil
}

// joinSliceToString lets servers that return scope as a JSON array decode into the
// space separated Scope string.
func joinSliceToString(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String || from.Kind() != reflect.Slice {
		return data, nil
	}
	items, ok := data.([]any)
	if !ok {
		return data, nil
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprint(item))
	}
	return strings.Join(parts, " "), nil
}
