// Package tokenstore persists client tokens between runs, keyed by profile name.
package tokenstore

import (
	"errors"

	"github.com/jrsteele09/go-oauth2-client/token"
)

// DefaultProfile is used when the caller does not name one.
const DefaultProfile = "default"

// ErrNotFound is returned when no token is stored under a profile.
var ErrNotFound = errors.New("token not found")

type Repo interface {
	Upsert(profile string, t token.Token) error
	Get(profile string) (token.Token, error)
	Delete(profile string) error
	List() ([]string, error)
}
