// Package supabase adapts the supabase-go Auth client to the service layer:
// context-aware calls, retries on 5xx and typed errors.
package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
	supabasego "github.com/supabase-community/supabase-go"

	"social-hub-backend/internal/common/retry"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserNotFound       = errors.New("auth user not found")
)

// APIError is a non-2xx answer from Supabase.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("supabase error: status %d: %s", e.StatusCode, e.Message)
}

type Config struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
	Retry      retry.Policy
}

type Client struct {
	auth  gotrue.Client
	retry retry.Policy
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.ServiceKey == "" {
		return nil, fmt.Errorf("ServiceKey is required")
	}

	sb, err := supabasego.NewClient(strings.TrimSuffix(cfg.URL, "/"), cfg.ServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	policy := cfg.Retry
	if policy.Attempts == 0 {
		policy = retry.Policy{Attempts: 3, Backoff: retry.Exponential(200*time.Millisecond, 2*time.Second)}
	}

	// Admin API требует service role ключ в Authorization
	authClient := sb.Auth.WithToken(cfg.ServiceKey).WithClient(*httpClient)

	return &Client{auth: authClient, retry: policy}, nil
}

type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type User struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	Phone        string                 `json:"phone"`
	Role         string                 `json:"role"`
	AppMetadata  map[string]interface{} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
}

func toUser(u types.User) *User {
	return &User{
		ID:           u.ID.String(),
		Email:        u.Email,
		Phone:        u.Phone,
		Role:         u.Role,
		AppMetadata:  u.AppMetadata,
		UserMetadata: u.UserMetadata,
	}
}

// SignInWithPassword performs the password grant. Wrong credentials map to
// ErrInvalidCredentials.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var token *types.TokenResponse
	err := c.do(ctx, func() error {
		var err error
		token, err = c.auth.SignInWithEmailPassword(email, password)
		return err
	})
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	return &Session{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		ExpiresIn:    token.ExpiresIn,
		RefreshToken: token.RefreshToken,
		User:         toUser(token.User),
	}, nil
}

// UpdateUserPassword sets a new password through the admin API.
func (c *Client) UpdateUserPassword(ctx context.Context, userID, password string) error {
	return c.updateUser(ctx, userID, types.AdminUpdateUserRequest{Password: password})
}

// SetAppMetadata merges app_metadata of the auth user (used for admin grants).
func (c *Client) SetAppMetadata(ctx context.Context, userID string, meta map[string]interface{}) error {
	return c.updateUser(ctx, userID, types.AdminUpdateUserRequest{AppMetadata: meta})
}

func (c *Client) GetUser(ctx context.Context, userID string) (*User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var resp *types.AdminGetUserResponse
	err = c.do(ctx, func() error {
		var err error
		resp, err = c.auth.AdminGetUser(types.AdminGetUserRequest{UserID: id})
		return err
	})
	if err != nil {
		return nil, notFound(err)
	}
	return toUser(resp.User), nil
}

func (c *Client) updateUser(ctx context.Context, userID string, req types.AdminUpdateUserRequest) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return ErrUserNotFound
	}
	req.UserID = id

	return notFound(c.do(ctx, func() error {
		_, err := c.auth.AdminUpdateUser(req)
		return err
	}))
}

func notFound(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return ErrUserNotFound
	}
	return err
}

// do вызывает call с повторами на сетевых сбоях и 5xx.
// gotrue-go не принимает context, поэтому отмена проверяется между попытками.
func (c *Client) do(ctx context.Context, call func() error) error {
	_, err := retry.Do(ctx, c.retry, func(ctx context.Context, attempt int) error {
		if err := ctx.Err(); err != nil {
			return retry.Stop(err)
		}

		err := call()
		if err == nil {
			return nil
		}

		if apiErr := parseAPIError(err); apiErr != nil {
			if apiErr.StatusCode >= 500 {
				return apiErr
			}
			return retry.Stop(apiErr)
		}
		if retry.IsRetryable(err) {
			return fmt.Errorf("supabase request: %w", err)
		}
		return retry.Stop(fmt.Errorf("supabase request: %w", err))
	})
	return err
}

// parseAPIError разбирает ошибки gotrue-go вида "response status code N: body"
func parseAPIError(err error) *APIError {
	var code int
	if n, _ := fmt.Sscanf(err.Error(), "response status code %d", &code); n != 1 {
		return nil
	}

	msg := ""
	if _, body, ok := strings.Cut(err.Error(), ": "); ok {
		msg = errorMessage([]byte(body))
	}
	return &APIError{StatusCode: code, Message: msg}
}

func errorMessage(body []byte) string {
	var errResp struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		for _, m := range []string{errResp.ErrorDescription, errResp.Message, errResp.Msg, errResp.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(body))
}
