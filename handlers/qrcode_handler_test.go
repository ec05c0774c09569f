package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCodeRoundTrip(t *testing.T) {
	env := setupTestEnv(t, false, 3)

	body := `{"name": "Alice", "email": "a@b.com", "address": "1 Main Street", "phone": "5551234567"}`
	rr := env.do(t, http.MethodPost, "/api/qr/generate", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	success, _, data := decodeEnvelope(t, rr)
	assert.True(t, success)

	var resp struct {
		QRCode struct {
			ID      string `json:"id"`
			QRValue string `json:"qrValue"`
			Phone   string `json:"phone"`
		} `json:"qrCode"`
		QRImageB64 string `json:"qrImageBase64"`
		User       struct {
			Email   string `json:"email"`
			Plan    string `json:"plan"`
			QRCount int    `json:"qrCount"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))

	assert.True(t, strings.HasSuffix(resp.QRCode.QRValue, "/scan/"+resp.QRCode.ID),
		"qrValue embeds the id from the same response")
	assert.NotEmpty(t, resp.QRImageB64)
	assert.Equal(t, "a@b.com", resp.User.Email)
	assert.Equal(t, "free", resp.User.Plan)
	assert.Equal(t, 1, resp.User.QRCount)
}

func TestGenerateQRCodeValidation(t *testing.T) {
	env := setupTestEnv(t, false, 3)

	rr := env.do(t, http.MethodPost, "/api/qr/generate",
		`{"name": "A", "email": "not-an-email", "address": "x", "phone": "123"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	success, message, _ := decodeEnvelope(t, rr)
	assert.False(t, success)
	assert.Contains(t, message, "Valid email is required")
}

func TestFreePlanLimit(t *testing.T) {
	env := setupTestEnv(t, false, 2)

	env.generateQR(t, "Alice", "a@b.com", "5551234567")
	env.generateQR(t, "Alice", "a@b.com", "5551234567")

	rr := env.do(t, http.MethodPost, "/api/qr/generate",
		`{"name": "Alice", "email": "a@b.com", "address": "1 Main Street", "phone": "5551234567"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	success, message, _ := decodeEnvelope(t, rr)
	assert.False(t, success)
	assert.Contains(t, message, "Free plan limit reached")
}

func TestPremiumPlanIsUnlimited(t *testing.T) {
	env := setupTestEnv(t, false, 2)

	env.generateQR(t, "Alice", "a@b.com", "5551234567")

	rr := env.do(t, http.MethodPost, "/api/user/upgrade", `{"email": "a@b.com"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	for i := 0; i < 5; i++ {
		env.generateQR(t, "Alice", "a@b.com", "5551234567")
	}
}

func TestGetQRCodeInfoExcludesPhone(t *testing.T) {
	env := setupTestEnv(t, false, 3)
	qrID := env.generateQR(t, "Alice", "a@b.com", "5551234567")

	rr := env.do(t, http.MethodGet, "/api/qr/"+qrID, "")
	require.Equal(t, http.StatusOK, rr.Code)

	success, _, data := decodeEnvelope(t, rr)
	assert.True(t, success)

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &info))
	assert.Equal(t, qrID, info["id"])
	assert.Equal(t, "Alice", info["name"])
	assert.Equal(t, "1 Main Street", info["address"])
	assert.NotContains(t, info, "phone", "the owner's number stays private")
	assert.NotContains(t, rr.Body.String(), "5551234567")
}

func TestGetQRCodeInfoUnknown(t *testing.T) {
	env := setupTestEnv(t, false, 3)

	rr := env.do(t, http.MethodGet, "/api/qr/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	success, _, _ := decodeEnvelope(t, rr)
	assert.False(t, success)
}
