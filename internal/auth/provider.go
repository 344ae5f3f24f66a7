package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var _ TokenVerifier = (*ProviderTokenVerifier)(nil)

// ProviderTokenVerifier verifies bearer tokens against the external
// identity provider's verification endpoint.
type ProviderTokenVerifier struct {
	verifyURL string
	client    *http.Client
}

func NewProviderTokenVerifier(verifyURL string) *ProviderTokenVerifier {
	return &ProviderTokenVerifier{
		verifyURL: verifyURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (t *ProviderTokenVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrTokenMissing
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.verifyURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := t.client.Do(req)
	if err != nil {
		logrus.Errorf("failed to verify access token: %v", err)
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", ErrTokenInvalid
	}

	var claims struct {
		UID string `json:"uid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&claims); err != nil {
		return "", err
	}

	if claims.UID == "" {
		return "", ErrTokenInvalid
	}

	return claims.UID, nil
}
