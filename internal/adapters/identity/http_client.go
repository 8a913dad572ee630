// Package identity provides ports.IdentityProvider implementations: a client
// for a GoTrue-style hosted identity store and a local Postgres-backed store
// for single-binary deployments.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

// HTTPClientConfig configures the hosted identity store client.
type HTTPClientConfig struct {
	BaseURL    string
	ServiceKey string
	HTTPClient *http.Client
}

// HTTPClient talks to the identity store's admin API. Create and Delete are
// the provisioning workflow's primary action and compensating action; both
// hit admin endpoints authenticated with the service key.
type HTTPClient struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

func NewHTTPClient(cfg HTTPClientConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("identity store base url is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("identity store service key is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 8 * time.Second}
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		httpClient: httpClient,
	}, nil
}

type identityUserPayload struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	EmailConfirm bool              `json:"email_confirm"`
	UserMetadata map[string]string `json:"user_metadata"`
	CreatedAt    time.Time         `json:"created_at"`
}

type createUserRequest struct {
	Email        string            `json:"email"`
	Password     string            `json:"password"`
	EmailConfirm bool              `json:"email_confirm"`
	UserMetadata map[string]string `json:"user_metadata,omitempty"`
}

type listUsersResponse struct {
	Users []identityUserPayload `json:"users"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordGrantResponse struct {
	User identityUserPayload `json:"user"`
}

type identityErrorResponse struct {
	Message string `json:"msg"`
	Error   string `json:"error"`
}

func (c *HTTPClient) Create(ctx context.Context, params ports.CreateIdentityParams) (domain.Identity, error) {
	body := createUserRequest{
		Email:        params.Email,
		Password:     params.Password,
		EmailConfirm: true,
		UserMetadata: params.Metadata,
	}

	var payload identityUserPayload
	if err := c.do(ctx, http.MethodPost, "/admin/users", body, &payload); err != nil {
		return domain.Identity{}, err
	}
	return toDomainIdentity(payload)
}

func (c *HTTPClient) FindByEmail(ctx context.Context, email string) (domain.Identity, error) {
	path := "/admin/users?email=" + url.QueryEscape(email)

	var payload listUsersResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return domain.Identity{}, err
	}
	for _, user := range payload.Users {
		if strings.EqualFold(user.Email, email) {
			return toDomainIdentity(user)
		}
	}
	return domain.Identity{}, domain.ErrNotFound
}

func (c *HTTPClient) Delete(ctx context.Context, identityID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+identityID.String(), nil, nil)
}

func (c *HTTPClient) VerifyPassword(ctx context.Context, email, password string) (domain.Identity, error) {
	body := passwordGrantRequest{Email: email, Password: password}

	var payload passwordGrantResponse
	status, err := c.doStatus(ctx, http.MethodPost, "/token?grant_type=password", body, &payload)
	if err != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return domain.Identity{}, domain.ErrInvalidCredentials
		}
		return domain.Identity{}, err
	}
	return toDomainIdentity(payload.User)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.doStatus(ctx, method, path, body, out)
	return err
}

func (c *HTTPClient) doStatus(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode identity request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: identity store: %v", domain.ErrExternal, err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return res.StatusCode, fmt.Errorf("%w: read identity response: %v", domain.ErrExternal, err)
	}

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		if out == nil {
			return res.StatusCode, nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return res.StatusCode, fmt.Errorf("%w: decode identity response: %v", domain.ErrExternal, err)
		}
		return res.StatusCode, nil
	case res.StatusCode == http.StatusNotFound:
		return res.StatusCode, domain.ErrNotFound
	case res.StatusCode == http.StatusUnprocessableEntity || res.StatusCode == http.StatusConflict:
		return res.StatusCode, fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, identityErrorMessage(raw))
	default:
		return res.StatusCode, fmt.Errorf("%w: identity store status %d: %s", domain.ErrExternal, res.StatusCode, identityErrorMessage(raw))
	}
}

func identityErrorMessage(raw []byte) string {
	var parsed identityErrorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return "unexpected identity store error"
}

func toDomainIdentity(payload identityUserPayload) (domain.Identity, error) {
	id, err := uuid.Parse(payload.ID)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: identity id %q: %v", domain.ErrExternal, payload.ID, err)
	}
	return domain.Identity{
		ID:        id,
		Email:     payload.Email,
		Confirmed: payload.EmailConfirm,
		Metadata:  payload.UserMetadata,
		CreatedAt: payload.CreatedAt,
	}, nil
}
