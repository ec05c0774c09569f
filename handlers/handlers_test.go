package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"parkingQrAPI/internal/database"
	"parkingQrAPI/services"
)

// countingProvider stands in for Twilio so tests can assert how many calls
// were placed.
type countingProvider struct {
	enabled bool
	calls   int
	fail    bool
}

func (f *countingProvider) Enabled() bool { return f.enabled }

func (f *countingProvider) CreateMaskedCall(ctx context.Context, callerPhone, ownerPhone, baseURL string) (*services.CallResult, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("provider unavailable")
	}
	return &services.CallResult{
		CallSid:      "CA_fake",
		Status:       "queued",
		MaskedNumber: "+15550000000",
		Message:      "Call initiated. You will receive a call from our masked number shortly.",
	}, nil
}

func (f *countingProvider) ConnectTwiML(ownerPhone string) string {
	real := services.NewTwilioService("AC_test", "token", "+15550000000", 0)
	return real.ConnectTwiML(ownerPhone)
}

type testEnv struct {
	router   *mux.Router
	provider *countingProvider
}

func setupTestEnv(t *testing.T, providerEnabled bool, freeQRLimit int) *testEnv {
	t.Helper()

	store, err := database.NewJSONStore(filepath.Join(t.TempDir(), "database.json"))
	require.NoError(t, err)

	provider := &countingProvider{enabled: providerEnabled}

	userService := services.NewUserService(store, freeQRLimit)
	qrService := services.NewQRCodeService(store)
	callService := services.NewCallService(qrService, provider)

	userHandler := NewUserHandler(userService)
	qrHandler := NewQRCodeHandler(qrService, userService, "http://localhost:3001")
	callHandler := NewCallHandler(callService, "http://localhost:3001")

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/user/upgrade", userHandler.UpgradeToPremium).Methods("POST")
	api.HandleFunc("/user/{email}", userHandler.GetUserInfo).Methods("GET")
	api.HandleFunc("/qr/generate", qrHandler.GenerateQRCode).Methods("POST")
	api.HandleFunc("/qr/{qrId}", qrHandler.GetQRCodeInfo).Methods("GET")
	api.HandleFunc("/call/initiate", callHandler.InitiateCall).Methods("POST")
	api.HandleFunc("/call/connect/{ownerPhone}", callHandler.ConnectCall).Methods("GET")
	api.HandleFunc("/call/status", callHandler.CallStatus).Methods("POST")

	return &testEnv{router: r, provider: provider}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
		req.Header.Set("Content-Type", "application/json")
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) (bool, string, json.RawMessage) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope.Success, envelope.Message, envelope.Data
}

// generateQR creates a QR code through the API and returns its id.
func (e *testEnv) generateQR(t *testing.T, name, email, phone string) string {
	t.Helper()

	body := `{"name": "` + name + `", "email": "` + email + `", "address": "1 Main Street", "phone": "` + phone + `"}`
	rr := e.do(t, http.MethodPost, "/api/qr/generate", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	_, _, data := decodeEnvelope(t, rr)
	var resp struct {
		QRCode struct {
			ID string `json:"id"`
		} `json:"qrCode"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp.QRCode.ID
}
