package gcp

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/jws"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	visionScope     = "https://www.googleapis.com/auth/cloud-vision"
	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	tokenLifetime   = time.Hour
)

// ServiceAccount is the subset of a Google service-account JSON key
// needed to mint Vision access tokens.
type ServiceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri,omitempty"`
}

// ParseServiceAccount decodes a JSON-encoded service account and checks
// that the signing fields are present.
func ParseServiceAccount(data []byte) (*ServiceAccount, error) {
	var sa ServiceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, fmt.Errorf("failed to decode service account JSON: %w", err)
	}
	if sa.ClientEmail == "" || sa.PrivateKey == "" {
		return nil, fmt.Errorf("service account JSON is missing client_email or private_key")
	}
	return &sa, nil
}

// TokenProvider exchanges a service-account credential for short-lived
// Vision bearer tokens via the JWT-bearer grant. Tokens are minted
// fresh on every call; there is no caching across invocations.
type TokenProvider struct {
	issuer     string
	key        *rsa.PrivateKey
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
}

// TokenProviderOption customizes a TokenProvider.
type TokenProviderOption func(*TokenProvider)

// WithTokenHTTPClient overrides the HTTP client used for the exchange.
func WithTokenHTTPClient(client *http.Client) TokenProviderOption {
	return func(p *TokenProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithTokenClock overrides the clock used for iat/exp claims.
func WithTokenClock(now func() time.Time) TokenProviderOption {
	return func(p *TokenProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// NewTokenProvider parses the credential's PEM key and returns a
// provider ready to mint tokens.
func NewTokenProvider(sa *ServiceAccount, opts ...TokenProviderOption) (*TokenProvider, error) {
	key, err := parseRSAPrivateKey([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account private key: %w", err)
	}

	tokenURL := sa.TokenURI
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}

	p := &TokenProvider{
		issuer:     sa.ClientEmail,
		key:        key,
		tokenURL:   tokenURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Token signs a one-hour RS256 assertion for the Vision scope and
// exchanges it at the token endpoint. A non-success status from the
// endpoint is returned as an error carrying the provider's raw
// response body; there is no local retry.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	iat := p.now()
	claims := &jws.ClaimSet{
		Iss:   p.issuer,
		Scope: visionScope,
		Aud:   p.tokenURL,
		Iat:   iat.Unix(),
		Exp:   iat.Add(tokenLifetime).Unix(),
	}
	header := &jws.Header{Algorithm: "RS256", Typ: "JWT"}

	assertion, err := jws.Encode(header, claims, p.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token assertion: %w", err)
	}

	form := url.Values{
		"grant_type": {jwtBearerGrant},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access_token")
	}
	return tokenResp.AccessToken, nil
}

// parseRSAPrivateKey accepts both PKCS#8 ("PRIVATE KEY") and PKCS#1
// ("RSA PRIVATE KEY") PEM blocks; Google keys ship as PKCS#8.
func parseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key")
	}
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is not an RSA key")
		}
		return rsaKey, nil
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}
