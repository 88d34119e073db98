// Package gate stores the API credential and decides whether a user may
// reach the generation surfaces.
package gate

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petal-labs/coverkit/cli/keystore"
	"github.com/petal-labs/coverkit/core"
)

// CredentialKey is the keystore entry the credential lives under.
const CredentialKey = "GEMINI_API_KEY"

// Gate wraps a keystore entry holding the credential.
type Gate struct {
	ks     keystore.Keystore
	logger zerolog.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Gate) {
		g.logger = l
	}
}

// New creates a gate over ks.
func New(ks keystore.Keystore, opts ...Option) *Gate {
	g := &Gate{ks: ks, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Login checks the key's format and stores it. No network call is made;
// a wrong but well-formed key is only caught on first use.
func (g *Gate) Login(key string) (core.Secret, error) {
	key = strings.TrimSpace(key)
	if err := core.ValidateCredentialFormat(key); err != nil {
		return core.Secret{}, err
	}
	if err := g.ks.Set(CredentialKey, key); err != nil {
		return core.Secret{}, err
	}
	secret := core.NewSecret(key)
	g.logger.Info().Str("key", secret.Hint()).Msg("credential stored")
	return secret, nil
}

// Current returns the stored credential. A stored value that fails the
// format check is treated as absent.
func (g *Gate) Current() (core.Secret, bool) {
	v, err := g.ks.Get(CredentialKey)
	if err != nil {
		var nf *keystore.ErrKeyNotFound
		if !errors.As(err, &nf) {
			g.logger.Warn().Err(err).Msg("reading credential")
		}
		return core.Secret{}, false
	}
	if core.ValidateCredentialFormat(v) != nil {
		return core.Secret{}, false
	}
	return core.NewSecret(strings.TrimSpace(v)), true
}

// Present reports whether a valid-looking credential is stored.
func (g *Gate) Present() bool {
	_, ok := g.Current()
	return ok
}

// Logout removes the stored credential. Logging out with nothing stored
// is not an error.
func (g *Gate) Logout() error {
	err := g.ks.Delete(CredentialKey)
	var nf *keystore.ErrKeyNotFound
	if err != nil && !errors.As(err, &nf) {
		return err
	}
	return nil
}

// Invalidate purges the credential after the service rejected it.
func (g *Gate) Invalidate(reason error) error {
	g.logger.Warn().Err(reason).Msg("credential rejected by service, purging")
	return g.Logout()
}
