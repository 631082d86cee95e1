package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"social-hub-backend/internal/common/auth"
	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/features/password/models"
	securitymodels "social-hub-backend/internal/features/security/models"
	"social-hub-backend/internal/platform/supabase"
)

type fakeLimiter struct {
	count int64
}

func (f *fakeLimiter) Hit(ctx context.Context, userID string) (int64, time.Duration, error) {
	f.count++
	return f.count, 10 * time.Minute, nil
}

type fakeProvider struct {
	password string
	updated  string
	signIns  int
	email    string
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*supabase.Session, error) {
	f.signIns++
	if password != f.password {
		return nil, supabase.ErrInvalidCredentials
	}
	return &supabase.Session{AccessToken: "t"}, nil
}

func (f *fakeProvider) UpdateUserPassword(ctx context.Context, userID, password string) error {
	f.updated = password
	return nil
}

func (f *fakeProvider) GetUser(ctx context.Context, userID string) (*supabase.User, error) {
	return &supabase.User{ID: userID, Email: f.email}, nil
}

type fakeBreaches struct {
	count int
	err   error
}

func (f *fakeBreaches) BreachCount(ctx context.Context, password string) (int, error) {
	return f.count, f.err
}

type fakeRecorder struct {
	events []securitymodels.Event
}

func (f *fakeRecorder) Record(ctx context.Context, e securitymodels.Event) error {
	f.events = append(f.events, e)
	return nil
}

const (
	oldPassword = "Old-passw0rd"
	newPassword = "N3w-Secure!pass"
)

var principal = &auth.Principal{UserID: "u1", Email: "alice@example.com"}

func newService(limiter *fakeLimiter, provider *fakeProvider, breaches *fakeBreaches, rec *fakeRecorder) PasswordService {
	return NewPasswordService(limiter, provider, breaches, rec, Config{MaxAttempts: 5, Window: 15 * time.Minute}, zap.NewNop())
}

func TestChangePasswordSuccess(t *testing.T) {
	provider := &fakeProvider{password: oldPassword}
	rec := &fakeRecorder{}
	svc := newService(&fakeLimiter{}, provider, &fakeBreaches{}, rec)

	err := svc.ChangePassword(context.Background(), principal, models.ChangeRequest{
		CurrentPassword: oldPassword,
		NewPassword:     newPassword,
	}, "203.0.113.7", "ua")
	require.NoError(t, err)
	assert.Equal(t, newPassword, provider.updated)
	require.Len(t, rec.events, 1)
	assert.Equal(t, securitymodels.EventPasswordChanged, rec.events[0].EventType)
}

func TestChangePasswordPolicy(t *testing.T) {
	provider := &fakeProvider{password: oldPassword}
	rec := &fakeRecorder{}
	svc := newService(&fakeLimiter{}, provider, &fakeBreaches{}, rec)

	err := svc.ChangePassword(context.Background(), principal, models.ChangeRequest{
		CurrentPassword: oldPassword,
		NewPassword:     "alice-Passw0rd!",
	}, "203.0.113.7", "ua")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePasswordPolicy))
	assert.Zero(t, provider.signIns)

	require.Len(t, rec.events, 1)
	assert.Equal(t, securitymodels.EventPasswordChangeFailed, rec.events[0].EventType)
	assert.Equal(t, "policy", rec.events[0].Metadata["reason"])
	assert.Equal(t, "203.0.113.7", rec.events[0].IPAddress)
}

func TestChangePasswordBreached(t *testing.T) {
	provider := &fakeProvider{password: oldPassword}
	svc := newService(&fakeLimiter{}, provider, &fakeBreaches{count: 42}, &fakeRecorder{})

	err := svc.ChangePassword(context.Background(), principal, models.ChangeRequest{
		CurrentPassword: oldPassword,
		NewPassword:     newPassword,
	}, "", "")
	assert.True(t, errors.HasCode(err, errors.ErrCodePasswordBreached))
	assert.Empty(t, provider.updated)
}

func TestChangePasswordBreachCheckFailsOpen(t *testing.T) {
	provider := &fakeProvider{password: oldPassword}
	svc := newService(&fakeLimiter{}, provider, &fakeBreaches{err: stderrors.New("timeout")}, &fakeRecorder{})

	err := svc.ChangePassword(context.Background(), principal, models.ChangeRequest{
		CurrentPassword: oldPassword,
		NewPassword:     newPassword,
	}, "", "")
	require.NoError(t, err)
	assert.Equal(t, newPassword, provider.updated)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	provider := &fakeProvider{password: oldPassword}
	rec := &fakeRecorder{}
	svc := newService(&fakeLimiter{}, provider, &fakeBreaches{}, rec)

	err := svc.ChangePassword(context.Background(), principal, models.ChangeRequest{
		CurrentPassword: "Wrong-passw0rd",
		NewPassword:     newPassword,
	}, "", "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidCredentials))
	require.Len(t, rec.events, 1)
	assert.Equal(t, securitymodels.EventPasswordChangeFailed, rec.events[0].EventType)
	assert.Equal(t, securitymodels.SeverityWarning, rec.events[0].Severity)
}

func TestChangePasswordRateLimited(t *testing.T) {
	provider := &fakeProvider{password: oldPassword}
	limiter := &fakeLimiter{count: 5}
	svc := newService(limiter, provider, &fakeBreaches{}, &fakeRecorder{})

	err := svc.ChangePassword(context.Background(), principal, models.ChangeRequest{
		CurrentPassword: oldPassword,
		NewPassword:     newPassword,
	}, "", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRateLimit))
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, 600, appErr.Details["retry_after_seconds"])
	assert.Zero(t, provider.signIns)
}

func TestChangePasswordLooksUpEmail(t *testing.T) {
	provider := &fakeProvider{password: oldPassword, email: "bob@example.com"}
	svc := newService(&fakeLimiter{}, provider, &fakeBreaches{}, &fakeRecorder{})

	err := svc.ChangePassword(context.Background(), &auth.Principal{UserID: "u2"}, models.ChangeRequest{
		CurrentPassword: oldPassword,
		NewPassword:     newPassword,
	}, "", "")
	require.NoError(t, err)
}
