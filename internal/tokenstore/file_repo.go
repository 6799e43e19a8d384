package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/jrsteele09/go-oauth2-client/token"
	"github.com/rs/zerolog/log"
)

var _ Repo = (*FileRepo)(nil)

// FileRepo keeps all profiles in one JSON document. Writes go to a temporary file
// that is renamed over the original, and the file is only readable by its owner.
type FileRepo struct {
	path string
	lock sync.RWMutex
}

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Upsert(profile string, t token.Token) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	tokens, err := r.read()
	if err != nil {
		return err
	}
	tokens[profileName(profile)] = t.Clone()
	return r.write(tokens)
}

func (r *FileRepo) Get(profile string) (token.Token, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tokens, err := r.read()
	if err != nil {
		return token.Token{}, err
	}
	t, ok := tokens[profileName(profile)]
	if !ok {
		return token.Token{}, fmt.Errorf("%w: %s", ErrNotFound, profileName(profile))
	}
	return t, nil
}

func (r *FileRepo) Delete(profile string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	tokens, err := r.read()
	if err != nil {
		return err
	}
	if _, ok := tokens[profileName(profile)]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, profileName(profile))
	}
	delete(tokens, profileName(profile))
	return r.write(tokens)
}

func (r *FileRepo) List() ([]string, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	tokens, err := r.read()
	if err != nil {
		return nil, err
	}
	profiles := make([]string, 0, len(tokens))
	for name := range tokens {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles, nil
}

// read returns an empty set when the file does not exist yet.
func (r *FileRepo) read() (map[string]token.Token, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return map[string]token.Token{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[tokenstore read] %s: %w", r.path, err)
	}

	tokens := map[string]token.Token{}
	if len(data) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("[tokenstore read] failed to decode %s: %w", r.path, err)
	}
	return tokens, nil
}

func (r *FileRepo) write(tokens map[string]token.Token) error {
	data, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return fmt.Errorf("[tokenstore write] failed to encode tokens: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[tokenstore write] %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".tokens-*")
	if err != nil {
		return fmt.Errorf("[tokenstore write] %w", err)
	}
	defer func() {
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("file", tmp.Name()).Msg("Failed to remove temporary token file")
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("[tokenstore write] %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("[tokenstore write] %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[tokenstore write] %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("[tokenstore write] %w", err)
	}
	return nil
}

func profileName(profile string) string {
	if profile == "" {
		return DefaultProfile
	}
	return profile
}
