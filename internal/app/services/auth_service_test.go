package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

func newTestAuthService(state *memState, mailer *fakeMailer, expose bool) *AuthService {
	users, _, _, _, _, _ := state.stores()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "campusconnect-test",
	})
	return NewAuthService(users, jwtService, mailer, AuthOptions{
		EmailRule:               validation.NewCollegeEmailRule([]string{"edu", "ac.in"}),
		MinPasswordLength:       6,
		ExposeVerificationToken: expose,
	}, zerolog.Nop())
}

func TestSignupVerifyLogin(t *testing.T) {
	state := newMemState()
	mailer := &fakeMailer{}
	svc := newTestAuthService(state, mailer, false)
	ctx := context.Background()

	result, err := svc.Signup(ctx, " Asha ", "Asha@Campus.EDU", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "asha@campus.edu", result.User.Email)
	assert.Empty(t, result.VerificationToken)
	require.Len(t, mailer.tokens, 1)

	_, err = svc.Login(ctx, "asha@campus.edu", "secret1")
	assert.Equal(t, apperrors.CodeEmailNotVerified, apperrors.CodeOf(err))

	require.NoError(t, svc.VerifyEmail(ctx, mailer.tokens[0]))
	assert.Equal(t, []string{"asha@campus.edu"}, mailer.welcomed)

	err = svc.VerifyEmail(ctx, mailer.tokens[0])
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.Login(ctx, "asha@campus.edu", "wrong-pass")
	assert.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(err))

	session, err := svc.Login(ctx, " ASHA@campus.edu", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, 3600, session.ExpiresIn)

	caller, err := svc.ResolveCaller(ctx, session.User.ID)
	require.NoError(t, err)
	assert.True(t, caller.Verified)
	assert.False(t, caller.ProfileCompleted)
}

func TestSignup_Rejections(t *testing.T) {
	state := newMemState()
	svc := newTestAuthService(state, &fakeMailer{}, true)
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Asha", "asha@campus.edu", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		kind     error
	}{
		{"missing fields", "", "secret1", apperrors.ErrValidationFailed},
		{"bad format", "not-an-email", "secret1", apperrors.ErrValidationFailed},
		{"non college domain", "asha@gmail.com", "secret1", apperrors.ErrValidationFailed},
		{"short password", "b@campus.edu", "123", apperrors.ErrValidationFailed},
		{"duplicate", "ASHA@campus.edu", "secret1", apperrors.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, "Someone", tt.email, tt.password)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestSignup_ExposesTokenWhenConfigured(t *testing.T) {
	svc := newTestAuthService(newMemState(), &fakeMailer{}, true)

	result, err := svc.Signup(context.Background(), "Asha", "asha@iitb.ac.in", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.VerificationToken)
}

func TestVerifyEmail_UnknownToken(t *testing.T) {
	svc := newTestAuthService(newMemState(), &fakeMailer{}, false)

	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), ""), apperrors.ErrValidationFailed)
	assert.ErrorIs(t, svc.VerifyEmail(context.Background(), "nope"), apperrors.ErrValidationFailed)
}

func TestResolveCaller_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newMemState(), &fakeMailer{}, false)

	_, err := svc.ResolveCaller(context.Background(), 12345)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	assert.Equal(t, apperrors.CodeInvalidToken, apperrors.CodeOf(err))
}

func TestEnsureProfileCompleted(t *testing.T) {
	state := newMemState()
	svc := newTestAuthService(state, &fakeMailer{}, false)
	ctx := context.Background()

	unverified := state.addUser("Bilal", false)
	incomplete := state.addUser("Asha", true)
	complete := state.addUser("Chen", true)
	complete.ProfileCompleted = true

	assert.Equal(t, apperrors.CodeEmailNotVerified, apperrors.CodeOf(svc.EnsureProfileCompleted(ctx, unverified.ID)))
	assert.Equal(t, apperrors.CodeProfileNotCompleted, apperrors.CodeOf(svc.EnsureProfileCompleted(ctx, incomplete.ID)))
	assert.NoError(t, svc.EnsureProfileCompleted(ctx, complete.ID))
	assert.ErrorIs(t, svc.EnsureProfileCompleted(ctx, 12345), apperrors.ErrUnauthenticated)
}
