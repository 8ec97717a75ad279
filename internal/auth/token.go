package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/prash00b/ZenDesk-ETL-pipeline/internal/config"
	"github.com/prash00b/ZenDesk-ETL-pipeline/pkg/util"
)

// TokenManager acquires and refreshes the destination bearer token.
// One manager is shared by every delivery worker; refresh runs under a
// single-writer lock so two workers can never race a refresh and
// overwrite each other's token. Tokens are per-process only.
type TokenManager struct {
	url          string
	clientID     string
	clientSecret string
	client       *http.Client
	logger       *zap.Logger

	// now is replaceable in tests.
	now func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewTokenManager builds a manager from the auth endpoint config.
func NewTokenManager(cfg config.AuthConfig, client *http.Client, logger *zap.Logger) *TokenManager {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenManager{
		url:          cfg.URL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       client,
		logger:       logger,
		now:          time.Now,
	}
}

type tokenRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

type tokenResponse struct {
	AccessToken string      `json:"accessToken"`
	ExpiresOn   json.Number `json:"expiresOn"`
}

// Token returns a bearer token valid at call time. Expiry is compared
// against wall-clock now, not batch start, so a long-running batch
// refreshes mid-flight. When the held token has expired, exactly one
// refresh happens before any caller proceeds.
func (tm *TokenManager) Token(ctx context.Context) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if tm.token != "" && tm.now().Before(tm.expiry) {
		return tm.token, nil
	}

	token, expiry, err := tm.fetch(ctx)
	if err != nil {
		return "", err
	}
	tm.token = token
	tm.expiry = expiry
	return token, nil
}

// Expiry returns the absolute expiry of the currently held token.
func (tm *TokenManager) Expiry() time.Time {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.expiry
}

// fetch performs the credential exchange. A non-success response or
// missing token is an AuthFailure; the delivery engine treats that as
// fatal rather than sending unauthenticated requests.
func (tm *TokenManager) fetch(ctx context.Context) (string, time.Time, error) {
	payload, err := json.Marshal(tokenRequest{ClientID: tm.clientID, ClientSecret: tm.clientSecret})
	if err != nil {
		return "", time.Time{}, util.NewAuthError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tm.url, bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, util.NewAuthError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := tm.client.Do(req)
	if err != nil {
		return "", time.Time{}, util.NewAuthError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, util.NewAuthError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Time{}, util.NewAuthError(fmt.Errorf("auth endpoint returned %d: %s", resp.StatusCode, body))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", time.Time{}, util.NewAuthError(fmt.Errorf("invalid auth response: %w", err))
	}
	if parsed.AccessToken == "" {
		return "", time.Time{}, util.NewAuthError(fmt.Errorf("auth response carried no token"))
	}

	expiry := tm.resolveExpiry(parsed)
	tm.logger.Info("obtained bearer token", zap.Time("expires_on", expiry))
	return parsed.AccessToken, expiry, nil
}

// resolveExpiry reads the epoch expiresOn field; when it is absent or
// unusable the token itself is tried as a JWT for its exp claim. If
// both fail the token is treated as already expired, forcing a refresh
// on every call, which is safe but slow.
func (tm *TokenManager) resolveExpiry(resp tokenResponse) time.Time {
	if epoch, err := resp.ExpiresOn.Int64(); err == nil && epoch > 0 {
		return time.Unix(epoch, 0)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(resp.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			tm.logger.Warn("auth response had no usable expiresOn; using JWT exp claim",
				zap.Time("exp", exp.Time))
			return exp.Time
		}
	}

	tm.logger.Warn("token expiry unknown; treating token as expired per call")
	return tm.now()
}
