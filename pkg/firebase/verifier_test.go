package firebase_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/storehub-api/pkg/firebase"
)

const project = "storehub-test"

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	key      *rsa.PrivateKey
	verifier *firebase.Verifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	keys, err := firebase.NewStaticKeys(map[string]any{"k1": &key.PublicKey})
	require.NoError(t, err)
	v, err := firebase.NewVerifier(project, keys, firebase.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return &fixture{key: key, verifier: v}
}

func validClaims() *firebase.Claims {
	c := &firebase.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://securetoken.google.com/" + project,
			Audience:  jwt.ClaimStrings{project},
			Subject:   "uid-123",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		AuthTime: now.Add(-2 * time.Minute).Unix(),
		Email:    "ana@example.com",
		Name:     "Ana",
	}
	c.Firebase.SignInProvider = "password"
	return c
}

func (f *fixture) sign(t *testing.T, method jwt.SigningMethod, kid string, c *firebase.Claims) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, c)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	var key any = f.key
	if method == jwt.SigningMethodHS256 {
		key = []byte("secret")
	}
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerify_TokenValido(t *testing.T) {
	f := newFixture(t)
	tok, err := f.verifier.Verify(context.Background(), f.sign(t, jwt.SigningMethodRS256, "k1", validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "uid-123", tok.UID)
	assert.Equal(t, "ana@example.com", tok.Email)
	assert.Equal(t, "Ana", tok.Name)
	assert.Equal(t, "password", tok.Claims.Firebase.SignInProvider)
}

func TestVerify_Rechazos(t *testing.T) {
	f := newFixture(t)
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token func() string
	}{
		{"vacío", func() string { return "" }},
		{"basura", func() string { return "abc.def.ghi" }},
		{"sin kid", func() string { return f.sign(t, jwt.SigningMethodRS256, "", validClaims()) }},
		{"kid desconocido", func() string { return f.sign(t, jwt.SigningMethodRS256, "k9", validClaims()) }},
		{"HS256", func() string { return f.sign(t, jwt.SigningMethodHS256, "k1", validClaims()) }},
		{"firma de otra llave", func() string {
			tok := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims())
			tok.Header["kid"] = "k1"
			s, _ := tok.SignedString(other)
			return s
		}},
		{"issuer de otro proyecto", func() string {
			c := validClaims()
			c.Issuer = "https://securetoken.google.com/otro"
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"audience de otro proyecto", func() string {
			c := validClaims()
			c.Audience = jwt.ClaimStrings{"otro"}
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"vencido", func() string {
			c := validClaims()
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Second))
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"sin exp", func() string {
			c := validClaims()
			c.ExpiresAt = nil
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"emitido en el futuro", func() string {
			c := validClaims()
			c.IssuedAt = jwt.NewNumericDate(now.Add(time.Hour))
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"sub vacío", func() string {
			c := validClaims()
			c.Subject = ""
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"sub demasiado largo", func() string {
			c := validClaims()
			c.Subject = strings.Repeat("a", 129)
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
		{"auth_time en el futuro", func() string {
			c := validClaims()
			c.AuthTime = now.Add(time.Hour).Unix()
			return f.sign(t, jwt.SigningMethodRS256, "k1", c)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.verifier.Verify(context.Background(), tc.token())
			assert.ErrorIs(t, err, firebase.ErrInvalidToken)
			assert.NotErrorIs(t, err, firebase.ErrUnavailable)
		})
	}
}

// unavailableKeys simula que no se pudo bajar el JWKS.
type unavailableKeys struct{}

func (unavailableKeys) Key(context.Context, string) (any, error) {
	return nil, firebase.ErrUnavailable
}

func TestVerify_LlavesNoDisponibles(t *testing.T) {
	f := newFixture(t)
	v, err := firebase.NewVerifier(project, unavailableKeys{}, firebase.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), f.sign(t, jwt.SigningMethodRS256, "k1", validClaims()))
	assert.ErrorIs(t, err, firebase.ErrUnavailable)
	assert.NotErrorIs(t, err, firebase.ErrInvalidToken)
}

func TestNewVerifier_Validaciones(t *testing.T) {
	_, err := firebase.NewVerifier("", unavailableKeys{})
	assert.Error(t, err)
	_, err = firebase.NewVerifier(project, nil)
	assert.Error(t, err)
}
