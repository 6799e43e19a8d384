package repofake

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth2-client/internal/tokenstore"
	"github.com/jrsteele09/go-oauth2-client/token"
)

var _ tokenstore.Repo = (*FakeTokenRepo)(nil)

type FakeTokenRepo struct {
	tokens map[string]token.Token
	lock   sync.RWMutex
}

func NewFakeTokenRepo() *FakeTokenRepo {
	return &FakeTokenRepo{
		tokens: make(map[string]token.Token),
	}
}

func (tr *FakeTokenRepo) Upsert(profile string, t token.Token) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[name(profile)] = t.Clone()
	return nil
}

func (tr *FakeTokenRepo) Get(profile string) (token.Token, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	t, ok := tr.tokens[name(profile)]
	if !ok {
		return token.Token{}, fmt.Errorf("%w: %s", tokenstore.ErrNotFound, name(profile))
	}
	return t.Clone(), nil
}

func (tr *FakeTokenRepo) Delete(profile string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.tokens[name(profile)]; !ok {
		return fmt.Errorf("%w: %s", tokenstore.ErrNotFound, name(profile))
	}
	delete(tr.tokens, name(profile))
	return nil
}

func (tr *FakeTokenRepo) List() ([]string, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	profiles := make([]string, 0, len(tr.tokens))
	for k := range tr.tokens {
		profiles = append(profiles, k)
	}
	sort.Strings(profiles)
	return profiles, nil
}

func name(profile string) string {
	if profile == "" {
		return tokenstore.DefaultProfile
	}
	return profile
}
