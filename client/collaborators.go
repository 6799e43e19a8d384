package client

import (
	"net/http"
	"net/url"
)

// Input reads request parameters, such as the authorization code on the redirect
// callback.
type Input interface {
	Get(name, defaultValue string) string
}

// InputFunc adapts a function to Input.
type InputFunc func(name, defaultValue string) string

// Get implements Input.
func (f InputFunc) Get(name, defaultValue string) string {
	return f(name, defaultValue)
}

// ValuesInput serves parameters from a url.Values.
type ValuesInput url.Values

// Get implements Input.
func (v ValuesInput) Get(name, defaultValue string) string {
	if value := url.Values(v).Get(name); value != "" {
		return value
	}
	return defaultValue
}

// RequestInput reads parameters from an inbound request, query string or form body.
func RequestInput(r *http.Request) Input {
	return InputFunc(func(name, defaultValue string) string {
		if value := r.FormValue(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Redirector is the optional application capability used to send the user agent
// elsewhere, typically back to the login entry point after a failed exchange.
type Redirector interface {
	Redirect(url string) error
}

// RedirectFunc adapts a function to Redirector.
type RedirectFunc func(url string) error

// Redirect implements Redirector.
func (f RedirectFunc) Redirect(url string) error {
	return f(url)
}

// HTTPRedirector answers the current request with a 303 See Other.
func HTTPRedirector(w http.ResponseWriter, r *http.Request) Redirector {
	return RedirectFunc(func(target string) error {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return nil
	})
}
