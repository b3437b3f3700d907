package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/projectk/projectk-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenLoginTokenCarriesUserID(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	registered := f.register(t, "Ana@Example.com", model.UserTypeStudent)
	assert.Equal(t, "ana@example.com", registered.Email)
	assert.NotEqual(t, "secret123", registered.PasswordHash)

	found, err := f.users.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	require.NoError(t, f.auth.CheckPassword(found.PasswordHash, "secret123"))

	issued, err := f.auth.GenerateToken(ctx, found)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, 5*time.Second)

	claims, err := f.auth.ValidateToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, model.UserTypeStudent, claims.UserType)
	assert.NoError(t, f.auth.ValidateSession(ctx, claims))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t, nil)
	f.register(t, "dup@example.com", model.UserTypeTeacher)

	_, err := f.users.Register(context.Background(), &model.RegisterRequest{
		Email: "DUP@example.com", Password: "secret123", Name: "Other", UserType: model.UserTypeStudent,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestCheckPasswordRejectsWrongPassword(t *testing.T) {
	f := newFixture(t, nil)
	u := f.register(t, "bob@example.com", model.UserTypeStudent)

	assert.ErrorIs(t, f.auth.CheckPassword(u.PasswordHash, "wrong"), ErrInvalidCredentials)
}

func TestRevokedTokenFailsSessionCheck(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.register(t, "carol@example.com", model.UserTypeStudent)

	issued, err := f.auth.GenerateToken(ctx, u)
	require.NoError(t, err)
	claims, err := f.auth.ValidateToken(issued.AccessToken)
	require.NoError(t, err)

	require.NoError(t, f.auth.RevokeToken(ctx, claims))
	assert.ErrorIs(t, f.auth.ValidateSession(ctx, claims), ErrSessionInvalidated)

	// Token signature is still valid; only the session is gone.
	_, err = f.auth.ValidateToken(issued.AccessToken)
	assert.NoError(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	f := newFixture(t, nil)
	u := f.register(t, "dave@example.com", model.UserTypeStudent)

	f.auth.cfg.JWTExpiry = -time.Minute
	issued, err := f.auth.GenerateToken(context.Background(), u)
	require.NoError(t, err)

	_, err = f.auth.ValidateToken(issued.AccessToken)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestValidateTokenWrongSecret(t *testing.T) {
	f := newFixture(t, nil)
	u := f.register(t, "erin@example.com", model.UserTypeTeacher)

	issued, err := f.auth.GenerateToken(context.Background(), u)
	require.NoError(t, err)

	f.auth.cfg.JWTSecret = "another-secret"
	_, err = f.auth.ValidateToken(issued.AccessToken)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestUpdateProfileAppliesOnlyProvidedFields(t *testing.T) {
	f := newFixture(t, nil)
	u := f.register(t, "fay@example.com", model.UserTypeStudent)

	grade := "10th"
	updated, err := f.users.UpdateProfile(context.Background(), u.ID, &model.UpdateProfileRequest{
		GradeLevel: &grade,
		Subjects:   []model.Subject{model.SubjectMath, model.SubjectBiology},
	})
	require.NoError(t, err)
	assert.Equal(t, u.Name, updated.Name)
	assert.Equal(t, "10th", updated.GradeLevel)
	assert.Equal(t, []model.Subject{model.SubjectMath, model.SubjectBiology}, updated.Subjects)
}
