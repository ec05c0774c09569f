package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUserInfoUnknownEmail(t *testing.T) {
	env := setupTestEnv(t, false, 3)

	rr := env.do(t, http.MethodGet, "/api/user/nobody@example.com", "")
	require.Equal(t, http.StatusOK, rr.Code)

	success, _, data := decodeEnvelope(t, rr)
	assert.True(t, success)

	var info struct {
		Exists  bool   `json:"exists"`
		Plan    string `json:"plan"`
		QRCount int    `json:"qrCount"`
	}
	require.NoError(t, json.Unmarshal(data, &info))
	assert.False(t, info.Exists)
	assert.Equal(t, "free", info.Plan)
	assert.Equal(t, 0, info.QRCount)
}

func TestGetUserInfoAfterGenerate(t *testing.T) {
	env := setupTestEnv(t, false, 3)
	env.generateQR(t, "Alice", "a@b.com", "5551234567")

	rr := env.do(t, http.MethodGet, "/api/user/a@b.com", "")
	require.Equal(t, http.StatusOK, rr.Code)

	_, _, data := decodeEnvelope(t, rr)
	var info struct {
		Exists  bool   `json:"exists"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Plan    string `json:"plan"`
		QRCount int    `json:"qrCount"`
	}
	require.NoError(t, json.Unmarshal(data, &info))
	assert.True(t, info.Exists)
	assert.Equal(t, "a@b.com", info.Email)
	assert.Equal(t, "Alice", info.Name)
	assert.Equal(t, "free", info.Plan)
	assert.Equal(t, 1, info.QRCount)
}

func TestUpgradeUnknownEmail(t *testing.T) {
	env := setupTestEnv(t, false, 3)

	rr := env.do(t, http.MethodPost, "/api/user/upgrade", `{"email": "unknown@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	success, _, _ := decodeEnvelope(t, rr)
	assert.False(t, success)
}

func TestUpgradeToPremium(t *testing.T) {
	env := setupTestEnv(t, false, 3)
	env.generateQR(t, "Alice", "a@b.com", "5551234567")

	rr := env.do(t, http.MethodPost, "/api/user/upgrade", `{"email": "a@b.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	_, _, data := decodeEnvelope(t, rr)
	var resp struct {
		Email string `json:"email"`
		Plan  string `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "a@b.com", resp.Email)
	assert.Equal(t, "premium", resp.Plan)
}

func TestUpgradeMissingEmail(t *testing.T) {
	env := setupTestEnv(t, false, 3)

	rr := env.do(t, http.MethodPost, "/api/user/upgrade", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
