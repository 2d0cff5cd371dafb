// Package client holds the outbound HTTP clients of the project service: the
// identity-provider client and the AI task-plan client.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"teampulse/apperrors"
	"teampulse/utils"
)

// Identity is the authoritative caller identity returned by the identity
// provider's profile endpoint.
type Identity struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

type profileResponse struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

// ExistsFallback decides the outcome of UserExists when the remote call fails.
// It is injected explicitly so the degraded behavior is testable without
// provoking network failures.
type ExistsFallback func(userID uint, err error) (bool, error)

// AssumeExists favors availability: a failed existence check reports the user
// as existing so a transient auth-service glitch cannot cascade into rejected
// operations.
func AssumeExists(userID uint, err error) (bool, error) {
	utils.LogEvent("user_exists_fallback", map[string]interface{}{
		"user_id": userID,
		"cause":   err.Error(),
	})
	return true, nil
}

// StrictExists propagates the failure instead of substituting an answer.
func StrictExists(_ uint, err error) (bool, error) {
	return false, err
}

// UserClient calls the identity provider's profile and existence endpoints.
type UserClient struct {
	baseURL  string
	http     *http.Client
	fallback ExistsFallback
}

func NewUserClient(baseURL string, fallback ExistsFallback) *UserClient {
	if fallback == nil {
		fallback = AssumeExists
	}
	return &UserClient{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 10 * time.Second},
		fallback: fallback,
	}
}

// GetProfile fetches the caller's profile. A successful response is proof of
// authentication: downstream code trusts it independently of the local token
// validator's verdict.
func (c *UserClient) GetProfile(ctx context.Context, token string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/users/me/profile", nil)
	if err != nil {
		return nil, apperrors.Internal("failed to build profile request")
	}
	req.Header.Set("Authorization", bearerHeader(token))

	resp, err := c.http.Do(req)
	if err != nil {
		utils.LogError("user_profile_fetch_failed", err, nil)
		return nil, apperrors.Internal("cannot retrieve user profile from auth service")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeRemoteError(resp)
	}

	var profile profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, apperrors.Internal("invalid profile response from auth service")
	}

	return &Identity{UserID: profile.UserID, Email: profile.Email}, nil
}

// UserExists checks whether a user id is known to the identity provider. On
// remote failure the configured fallback strategy decides the answer.
func (c *UserClient) UserExists(ctx context.Context, userID uint, token string) (bool, error) {
	url := fmt.Sprintf("%s/auth/users/%d/exists", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.fallback(userID, err)
	}
	req.Header.Set("Authorization", bearerHeader(token))

	resp, err := c.http.Do(req)
	if err != nil {
		return c.fallback(userID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.fallback(userID, decodeRemoteError(resp))
	}

	var exists bool
	if err := json.NewDecoder(resp.Body).Decode(&exists); err != nil {
		return c.fallback(userID, err)
	}

	return exists, nil
}

func bearerHeader(token string) string {
	return "Bearer " + utils.StripBearer(token)
}

func decodeRemoteError(resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return apperrors.Unauthenticated("Invalid or expired token")
	case http.StatusNotFound:
		return apperrors.NotFound("User not found")
	case http.StatusBadRequest:
		return apperrors.BadRequest("Bad request: " + string(respBody))
	}
	return apperrors.Internal(fmt.Sprintf("auth service returned status %d", resp.StatusCode))
}
