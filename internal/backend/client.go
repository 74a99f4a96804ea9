package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/convergenps/sheetctl/internal/domain"
)

const importPathPrefix = "/admin/smartsheet/import/"

// Client talks to the backend's admin REST surface. One instance serves a
// whole run; it holds no token state, callers pass the token per request.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient allows setting a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout overrides the default 30s request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}

	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenExtractors are tried in order against a 200 login body; the first
// non-empty token wins. The backend has shipped both shapes.
var tokenExtractors = []func([]byte) string{
	func(body []byte) string {
		var r struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.Unmarshal(body, &r); err != nil {
			return ""
		}
		return r.AccessToken
	},
	func(body []byte) string {
		var r struct {
			Data struct {
				AccessToken string `json:"accessToken"`
			} `json:"data"`
		}
		if err := json.Unmarshal(body, &r); err != nil {
			return ""
		}
		return r.Data.AccessToken
	},
}

// Login exchanges credentials for a bearer token. Exactly one attempt, no
// caching: the caller owns the token for the rest of the run.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	if creds.Email == "" || creds.Password == "" {
		return "", &AuthError{Err: errors.New("email and password are required")}
	}

	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return "", &AuthError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &AuthError{Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &AuthError{Status: resp.StatusCode, Body: string(raw)}
	}

	for _, extract := range tokenExtractors {
		if token := extract(raw); token != "" {
			return token, nil
		}
	}

	return "", &AuthError{Status: resp.StatusCode, Body: string(raw), Err: errors.New("no access token in response")}
}

type importEnvelope struct {
	Data struct {
		Imported int               `json:"imported"`
		Updated  int               `json:"updated"`
		Failed   int               `json:"failed"`
		Errors   []domain.RowError `json:"errors"`
	} `json:"data"`
}

// Import runs one category import and normalizes the response. Fields the
// backend omits default to zero/empty. No retries; the driver decides how to
// continue after a failure.
func (c *Client) Import(ctx context.Context, token string, category domain.Category) (*domain.ImportResult, error) {
	raw, err := c.post(ctx, token, importPathPrefix+string(category))
	if err != nil {
		return nil, err
	}

	var envelope importEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &TransportError{Kind: KindBackendError, Status: http.StatusOK, Body: string(raw), Err: err}
	}

	return &domain.ImportResult{
		Category: category,
		Imported: envelope.Data.Imported,
		Updated:  envelope.Data.Updated,
		Failed:   envelope.Data.Failed,
		Errors:   envelope.Data.Errors,
	}, nil
}

// ImportAll hits the import-everything endpoint. The backend returns an
// opaque summary with no per-category breakdown, so it is surfaced as-is.
func (c *Client) ImportAll(ctx context.Context, token string) (json.RawMessage, error) {
	raw, err := c.post(ctx, token, importPathPrefix+string(domain.CategoryAll))
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &TransportError{Kind: KindBackendError, Status: http.StatusOK, Body: string(raw), Err: err}
	}

	return envelope.Data, nil
}

func (c *Client) post(ctx context.Context, token, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Kind: KindNetworkError, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Kind: KindNetworkError, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Kind: KindNetworkError, Status: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &TransportError{Kind: KindAuthRejected, Status: resp.StatusCode, Body: string(raw)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &TransportError{Kind: KindBackendError, Status: resp.StatusCode, Body: string(raw)}
	}

	return raw, nil
}
