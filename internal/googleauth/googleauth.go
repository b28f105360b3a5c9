// Package googleauth mints OAuth2 access tokens for a Google service
// account by signing a JWT assertion and exchanging it at the token
// endpoint. Tokens are cached until shortly before expiry.
package googleauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CredentialsEnvVar holds service account JSON inline; it takes precedence
// over a credentials file when set.
const CredentialsEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"

const (
	grantType       = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL    = time.Hour
	expiryMargin    = time.Minute
	defaultTokenURI = "https://oauth2.googleapis.com/token"
)

// Credentials is the subset of a service account key file needed to sign
// token assertions.
type Credentials struct {
	Type         string `json:"type"`
	ClientEmail  string `json:"client_email"`
	PrivateKey   string `json:"private_key"`
	PrivateKeyID string `json:"private_key_id"`
	TokenURI     string `json:"token_uri"`
}

// LoadCredentials reads service account credentials, preferring the
// CredentialsEnvVar environment variable over the given file path.
func LoadCredentials(path string) (*Credentials, error) {
	if raw := os.Getenv(CredentialsEnvVar); raw != "" {
		return ParseCredentials([]byte(raw))
	}
	if path == "" {
		return nil, fmt.Errorf("no credentials: %s is unset and no credentials file configured", CredentialsEnvVar)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return ParseCredentials(data)
}

// ParseCredentials decodes a service account key JSON document.
func ParseCredentials(data []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return nil, fmt.Errorf("credentials missing client_email or private_key")
	}
	if creds.TokenURI == "" {
		creds.TokenURI = defaultTokenURI
	}
	return &creds, nil
}

// TokenSource issues and caches access tokens for a fixed set of scopes.
// It is safe for concurrent use.
type TokenSource struct {
	creds      *Credentials
	scopes     []string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenSource creates a TokenSource for the given credentials and scopes.
func NewTokenSource(creds *Credentials, scopes ...string) *TokenSource {
	return &TokenSource{
		creds:      creds,
		scopes:     scopes,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// Token returns a valid access token, refreshing it when the cached one
// is expired or about to expire.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token != "" && ts.now().Before(ts.expiry.Add(-expiryMargin)) {
		return ts.token, nil
	}

	assertion, err := ts.signAssertion()
	if err != nil {
		return "", err
	}

	token, expiresIn, err := ts.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	ts.token = token
	ts.expiry = ts.now().Add(time.Duration(expiresIn) * time.Second)
	return ts.token, nil
}

func (ts *TokenSource) signAssertion() (string, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(ts.creds.PrivateKey))
	if err != nil {
		return "", fmt.Errorf("failed to parse private key: %w", err)
	}

	now := ts.now()
	claims := jwt.MapClaims{
		"iss":   ts.creds.ClientEmail,
		"scope": strings.Join(ts.scopes, " "),
		"aud":   ts.creds.TokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if ts.creds.PrivateKeyID != "" {
		token.Header["kid"] = ts.creds.PrivateKeyID
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}

func (ts *TokenSource) exchange(ctx context.Context, assertion string) (string, int, error) {
	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ts.creds.TokenURI,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", 0, fmt.Errorf("failed to parse token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", 0, fmt.Errorf("token response contained no access token")
	}
	return payload.AccessToken, payload.ExpiresIn, nil
}
