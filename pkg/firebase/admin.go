package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAdminURL base de la API de Identity Toolkit.
const DefaultAdminURL = "https://identitytoolkit.googleapis.com"

var adminScopes = []string{
	"https://www.googleapis.com/auth/identitytoolkit",
	"https://www.googleapis.com/auth/cloud-platform",
}

// Account datos de una cuenta del proveedor.
type Account struct {
	UID         string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Disabled    bool   `json:"disabled"`
}

// AdminClient cliente de la API admin (cuentas) de un proyecto.
type AdminClient struct {
	http      *http.Client
	baseURL   string
	projectID string
}

// NewAdminClient autentica con la cuenta de servicio de credentialsFile o, si está vacío,
// con las Application Default Credentials.
func NewAdminClient(ctx context.Context, projectID, credentialsFile string, timeout time.Duration) (*AdminClient, error) {
	var creds *google.Credentials
	var err error
	if credentialsFile != "" {
		data, rerr := os.ReadFile(credentialsFile)
		if rerr != nil {
			return nil, fmt.Errorf("leer credenciales: %w", rerr)
		}
		creds, err = google.CredentialsFromJSON(ctx, data, adminScopes...)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, adminScopes...)
	}
	if err != nil {
		return nil, fmt.Errorf("credenciales de google: %w", err)
	}
	hc := oauth2.NewClient(ctx, creds.TokenSource)
	hc.Timeout = timeout
	return NewAdminClientWithHTTP(hc, DefaultAdminURL, projectID), nil
}

// NewAdminClientWithHTTP usa un http.Client ya autenticado y una URL base arbitraria (emulador, tests).
func NewAdminClientWithHTTP(hc *http.Client, baseURL, projectID string) *AdminClient {
	return &AdminClient{http: hc, baseURL: strings.TrimRight(baseURL, "/"), projectID: projectID}
}

// GetUser devuelve la cuenta o ErrUserNotFound.
func (c *AdminClient) GetUser(ctx context.Context, uid string) (*Account, error) {
	var out struct {
		Users []Account `json:"users"`
	}
	if err := c.call(ctx, "accounts:lookup", map[string]any{"localId": []string{uid}}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, ErrUserNotFound
	}
	return &out.Users[0], nil
}

// CreateUser crea una cuenta con email y password y devuelve su uid.
func (c *AdminClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	in := map[string]any{"email": email, "password": password}
	if displayName != "" {
		in["displayName"] = displayName
	}
	var out struct {
		LocalID string `json:"localId"`
	}
	if err := c.call(ctx, "accounts", in, &out); err != nil {
		return "", err
	}
	if out.LocalID == "" {
		return "", fmt.Errorf("%w: respuesta sin localId", ErrUnavailable)
	}
	return out.LocalID, nil
}

// SetDisabled habilita o deshabilita la cuenta.
func (c *AdminClient) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return c.call(ctx, "accounts:update", map[string]any{"localId": uid, "disableUser": disabled}, nil)
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *AdminClient) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/v1/projects/%s/%s", c.baseURL, c.projectID, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, method, err)
	}

	if resp.StatusCode >= 300 {
		return classifyAPIError(method, resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: respuesta inválida: %v", ErrUnavailable, method, err)
	}
	return nil
}

// classifyAPIError traduce el mensaje de error de Identity Toolkit ("USER_NOT_FOUND",
// "EMAIL_EXISTS", "WEAK_PASSWORD : ...") a los errores del paquete.
func classifyAPIError(method string, status int, raw []byte) error {
	var e apiError
	_ = json.Unmarshal(raw, &e)
	code, _, _ := strings.Cut(e.Error.Message, " ")
	switch {
	case code == "USER_NOT_FOUND":
		return ErrUserNotFound
	case code == "EMAIL_EXISTS" || code == "DUPLICATE_LOCAL_ID":
		return ErrEmailExists
	case status >= 500 || status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s: HTTP %d", ErrUnavailable, method, status)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s: credenciales rechazadas (HTTP %d)", ErrUnavailable, method, status)
	default:
		return errors.Join(ErrInvalidArgument, fmt.Errorf("%s: %s", method, e.Error.Message))
	}
}
