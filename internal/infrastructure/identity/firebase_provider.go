package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/storehub-api/internal/application/ports"
	"github.com/jhoicas/storehub-api/internal/domain"
	"github.com/jhoicas/storehub-api/pkg/firebase"
)

var _ ports.IdentityProvider = (*FirebaseProvider)(nil)

// TokenVerifier lo que el adaptador necesita del verificador de ID tokens.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*firebase.Token, error)
}

// AccountAdmin lo que el adaptador necesita de la API admin.
type AccountAdmin interface {
	GetUser(ctx context.Context, uid string) (*firebase.Account, error)
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SetDisabled(ctx context.Context, uid string, disabled bool) error
}

// FirebaseProvider implementa ports.IdentityProvider sobre Firebase Authentication.
type FirebaseProvider struct {
	verifier     TokenVerifier
	admin        AccountAdmin
	checkRevoked bool
}

// NewFirebaseProvider construye el adaptador. Con checkRevoked, cada verificación consulta
// la cuenta para detectar si fue deshabilitada después de emitir el token.
func NewFirebaseProvider(verifier TokenVerifier, admin AccountAdmin, checkRevoked bool) *FirebaseProvider {
	return &FirebaseProvider{verifier: verifier, admin: admin, checkRevoked: checkRevoked}
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, idToken string) (*ports.ExternalIdentity, error) {
	tok, err := p.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, classify(ctx, err)
	}
	id := &ports.ExternalIdentity{UID: tok.UID, Email: tok.Email, DisplayName: tok.Name}
	if !p.checkRevoked {
		return id, nil
	}
	acc, err := p.admin.GetUser(ctx, tok.UID)
	if err != nil {
		if errors.Is(err, firebase.ErrUserNotFound) {
			// La cuenta fue borrada: el token ya no representa a nadie.
			return nil, fmt.Errorf("%w: cuenta eliminada", domain.ErrInvalidCredential)
		}
		return nil, classify(ctx, err)
	}
	id.Disabled = acc.Disabled
	if id.Email == "" {
		id.Email = acc.Email
	}
	if id.DisplayName == "" {
		id.DisplayName = acc.DisplayName
	}
	return id, nil
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (*ports.ExternalIdentity, error) {
	acc, err := p.admin.GetUser(ctx, uid)
	if err != nil {
		return nil, classify(ctx, err)
	}
	return &ports.ExternalIdentity{UID: acc.UID, Email: acc.Email, DisplayName: acc.DisplayName, Disabled: acc.Disabled}, nil
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	uid, err := p.admin.CreateUser(ctx, email, password, displayName)
	if err != nil {
		return "", classify(ctx, err)
	}
	return uid, nil
}

func (p *FirebaseProvider) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	if err := p.admin.SetDisabled(ctx, uid, disabled); err != nil {
		return classify(ctx, err)
	}
	return nil
}

// classify traduce los errores de Firebase a errores de dominio. Lo no reconocido se trata
// como indisponibilidad del proveedor.
func classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, ctx.Err())
	case errors.Is(err, firebase.ErrInvalidToken):
		return fmt.Errorf("%w: %v", domain.ErrInvalidCredential, err)
	case errors.Is(err, firebase.ErrUserNotFound):
		return fmt.Errorf("%w: %v", domain.ErrUserNotFound, err)
	case errors.Is(err, firebase.ErrEmailExists):
		return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
	case errors.Is(err, firebase.ErrInvalidArgument):
		return fmt.Errorf("%w: %v", domain.ErrInvalidParams, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
}
