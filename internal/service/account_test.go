package service_test

import (
	"context"
	"testing"
	"time"

	"course-marketplace/internal/config"
	"course-marketplace/internal/model"
	"course-marketplace/internal/repository"
	"course-marketplace/internal/service"
	"course-marketplace/internal/testutil"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokens() service.TokenService {
	return service.NewTokenService(&config.Auth{
		UserSecret:  "user-secret",
		AdminSecret: "admin-secret",
		TokenTTL:    24 * time.Hour,
	})
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	tokens := newTokens()

	token, err := tokens.Issue(model.RoleUser, "u1")
	require.NoError(t, err)

	subject, err := tokens.Verify(model.RoleUser, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", subject)

	_, err = tokens.Verify(model.RoleAdmin, token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestTokenService_RejectsExpiredAndForeignTokens(t *testing.T) {
	tokens := newTokens()

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		Role: model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	signed, err := expired.SignedString([]byte("user-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(model.RoleUser, signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	noExpiry := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		Role:             model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"},
	})
	signed, err = noExpiry.SignedString([]byte("user-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(model.RoleUser, signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	otherAlg := jwt.NewWithClaims(jwt.SigningMethodHS512, service.Claims{
		Role: model.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err = otherAlg.SignedString([]byte("user-secret"))
	require.NoError(t, err)
	_, err = tokens.Verify(model.RoleUser, signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = tokens.Verify(model.RoleUser, "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestAccountService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tokens := newTokens()
	users := service.NewAccountService(model.RoleUser, repository.NewAccountRepository(db, model.RoleUser), tokens)

	account, err := users.Signup(ctx, service.SignupInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "Alice@Example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.NotEqual(t, "secret123", account.PasswordHash)

	_, err = users.Signup(ctx, service.SignupInput{
		FirstName: "Alice",
		LastName:  "Again",
		Email:     "alice@example.com",
		Password:  "secret123",
	})
	assert.True(t, model.HasCode(err, model.ErrCodeEmailTaken))

	result, err := users.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, result.Account.ID)

	subject, err := tokens.Verify(model.RoleUser, result.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, subject)

	_, err = users.Login(ctx, "alice@example.com", "wrong-password")
	assert.True(t, model.HasCode(err, model.ErrCodeInvalidLogin))

	_, err = users.Login(ctx, "nobody@example.com", "secret123")
	assert.True(t, model.HasCode(err, model.ErrCodeInvalidLogin))
}

func TestAccountService_AdminTokensAreNotUserTokens(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	tokens := newTokens()
	admins := service.NewAccountService(model.RoleAdmin, repository.NewAccountRepository(db, model.RoleAdmin), tokens)

	_, err := admins.Signup(ctx, service.SignupInput{FirstName: "Bob", LastName: "Jones", Email: "bob@example.com", Password: "secret123"})
	require.NoError(t, err)

	result, err := admins.Login(ctx, "bob@example.com", "secret123")
	require.NoError(t, err)

	_, err = tokens.Verify(model.RoleUser, result.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}
