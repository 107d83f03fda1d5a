package firebase

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuerPrefix = "https://securetoken.google.com/"
	maxUIDLength = 128
)

// Claims payload de un ID token de Firebase.
type Claims struct {
	jwt.RegisteredClaims
	AuthTime      int64  `json:"auth_time"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	Firebase      struct {
		SignInProvider string `json:"sign_in_provider,omitempty"`
		Tenant         string `json:"tenant,omitempty"`
	} `json:"firebase"`
}

// Token resultado de una verificación exitosa.
type Token struct {
	UID      string
	Email    string
	Name     string
	AuthTime time.Time
	Expires  time.Time
	Claims   *Claims
}

// Verifier valida ID tokens de un proyecto.
type Verifier struct {
	projectID string
	keys      KeySource
	parser    *jwt.Parser
	now       func() time.Time
	leeway    time.Duration
}

// VerifierOption configura el Verifier.
type VerifierOption func(*Verifier)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) { v.now = now }
}

// WithLeeway tolerancia de reloj para exp, iat y auth_time.
func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) { v.leeway = d }
}

// NewVerifier construye el verificador. projectID es obligatorio.
func NewVerifier(projectID string, keys KeySource, opts ...VerifierOption) (*Verifier, error) {
	if projectID == "" {
		return nil, errors.New("firebase: projectID vacío")
	}
	if keys == nil {
		return nil, errors.New("firebase: KeySource nil")
	}
	v := &Verifier{projectID: projectID, keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	v.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuerPrefix+projectID),
		jwt.WithAudience(projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	)
	return v, nil
}

// Verify valida firma RS256, kid, iss, aud, exp, iat, sub y auth_time.
// Los errores envuelven ErrInvalidToken o ErrUnavailable.
func (v *Verifier) Verify(ctx context.Context, idToken string) (*Token, error) {
	if idToken == "" {
		return nil, fmt.Errorf("%w: token vacío", ErrInvalidToken)
	}
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(idToken, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("%w: falta kid", ErrInvalidToken)
		}
		return v.keys.Key(ctx, kid)
	})
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" || utf8.RuneCountInString(claims.Subject) > maxUIDLength {
		return nil, fmt.Errorf("%w: sub inválido", ErrInvalidToken)
	}
	authTime := time.Unix(claims.AuthTime, 0)
	if claims.AuthTime <= 0 || authTime.After(v.now().Add(v.leeway)) {
		return nil, fmt.Errorf("%w: auth_time inválido", ErrInvalidToken)
	}

	tok := &Token{
		UID:      claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		AuthTime: authTime,
		Claims:   claims,
	}
	if claims.ExpiresAt != nil {
		tok.Expires = claims.ExpiresAt.Time
	}
	return tok, nil
}
