package firebase

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// KeySource entrega la llave pública que corresponde a un kid.
type KeySource interface {
	Key(ctx context.Context, kid string) (any, error)
}

// RemoteKeys llaves publicadas por Google, con cache y refresco automático.
type RemoteKeys struct {
	url   string
	cache *jwk.Cache
}

// NewRemoteKeys registra url en un jwk.Cache. El refresco respeta el Cache-Control de Google
// con un mínimo de minRefresh.
func NewRemoteKeys(ctx context.Context, url string, minRefresh time.Duration) (*RemoteKeys, error) {
	if minRefresh <= 0 {
		minRefresh = 15 * time.Minute
	}
	c := jwk.NewCache(ctx)
	if err := c.Register(url, jwk.WithMinRefreshInterval(minRefresh)); err != nil {
		return nil, fmt.Errorf("registrar JWKS: %w", err)
	}
	return &RemoteKeys{url: url, cache: c}, nil
}

// Key busca kid en el set cacheado. Una falla al bajar el set es ErrUnavailable;
// un kid desconocido es ErrInvalidToken.
func (k *RemoteKeys) Key(ctx context.Context, kid string) (any, error) {
	set, err := k.cache.Get(ctx, k.url)
	if err != nil {
		return nil, fmt.Errorf("%w: obtener JWKS: %v", ErrUnavailable, err)
	}
	return lookup(set, kid)
}

// StaticKeys set fijo de llaves (tests y entornos sin red).
type StaticKeys struct {
	set jwk.Set
}

// NewStaticKeys arma un set con las llaves públicas dadas, indexadas por kid.
func NewStaticKeys(keys map[string]any) (*StaticKeys, error) {
	set := jwk.NewSet()
	for kid, raw := range keys {
		key, err := jwk.FromRaw(raw)
		if err != nil {
			return nil, fmt.Errorf("llave %q: %w", kid, err)
		}
		if err := key.Set(jwk.KeyIDKey, kid); err != nil {
			return nil, err
		}
		if err := set.AddKey(key); err != nil {
			return nil, err
		}
	}
	return &StaticKeys{set: set}, nil
}

func (k *StaticKeys) Key(_ context.Context, kid string) (any, error) {
	return lookup(k.set, kid)
}

func lookup(set jwk.Set, kid string) (any, error) {
	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: kid %q desconocido", ErrInvalidToken, kid)
	}
	var raw any
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("%w: llave %q: %v", ErrInvalidToken, kid, err)
	}
	return raw, nil
}
