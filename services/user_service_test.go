package services

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parkingQrAPI/internal/apperr"
	"parkingQrAPI/internal/database"
	"parkingQrAPI/internal/user"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()
	store, err := database.NewJSONStore(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)
	return store
}

func TestGetOrCreateUserIsIdempotent(t *testing.T) {
	svc := NewUserService(newTestStore(t), 3)
	ctx := context.Background()

	first, err := svc.GetOrCreateUser(ctx, "Alice@Example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", first.Email)
	assert.Equal(t, user.PlanFree, first.Plan)

	second, err := svc.GetOrCreateUser(ctx, "alice@example.com", "Someone Else")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "same email resolves to the same user")
	assert.Equal(t, "Alice", second.Name, "existing record wins over the new name")
}

func TestGetUserInfoUnknownEmail(t *testing.T) {
	svc := NewUserService(newTestStore(t), 3)

	info, err := svc.GetUserInfo(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, info.Exists)
	assert.Equal(t, user.PlanFree, info.Plan)
	assert.Equal(t, 0, info.QRCount)
}

func TestUpgradeUnknownEmailIsNotFound(t *testing.T) {
	svc := NewUserService(newTestStore(t), 3)

	_, err := svc.UpgradeToPremium(context.Background(), "unknown@x.com")
	require.Error(t, err)

	var appErr *apperr.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestUpgradeToPremium(t *testing.T) {
	svc := NewUserService(newTestStore(t), 3)
	ctx := context.Background()

	_, err := svc.GetOrCreateUser(ctx, "a@b.com", "Alice")
	require.NoError(t, err)

	upgraded, err := svc.UpgradeToPremium(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, user.PlanPremium, upgraded.Plan)
}

func TestCanGenerateQR(t *testing.T) {
	svc := NewUserService(newTestStore(t), 3)

	free := &user.User{Plan: user.PlanFree}
	premium := &user.User{Plan: user.PlanPremium}

	assert.True(t, svc.CanGenerateQR(free, 2).Allowed)
	assert.False(t, svc.CanGenerateQR(free, 3).Allowed, "free plan stops at the cap")
	assert.False(t, svc.CanGenerateQR(free, 10).Allowed)

	assert.True(t, svc.CanGenerateQR(premium, 3).Allowed)
	assert.True(t, svc.CanGenerateQR(premium, 1000).Allowed, "premium is unbounded")

	// Cap <= 0 disables the limit entirely.
	unbounded := NewUserService(newTestStore(t), 0)
	assert.True(t, unbounded.CanGenerateQR(free, 1000).Allowed)
}
