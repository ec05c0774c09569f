package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"parkingQrAPI/internal/qrcode"
	"parkingQrAPI/services"

	"github.com/gorilla/mux"
)

type CallHandler struct {
	callService *services.CallService
	baseURL     string
}

func NewCallHandler(callService *services.CallService, baseURL string) *CallHandler {
	return &CallHandler{callService: callService, baseURL: baseURL}
}

func (h *CallHandler) InitiateCall(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req qrcode.InitiateCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.QRID == "" {
		respondWithError(w, http.StatusBadRequest, "QR ID is required")
		return
	}

	result, err := h.callService.InitiateCall(ctx, req.QRID, req.CallerPhone, h.callbackBaseURL(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// ConnectCall is fetched by Twilio once the caller answers. It must return
// the bridge script as TwiML; the owner's number rides in the path.
func (h *CallHandler) ConnectCall(w http.ResponseWriter, r *http.Request) {
	ownerPhone := mux.Vars(r)["ownerPhone"]
	if decoded, err := url.PathUnescape(ownerPhone); err == nil {
		ownerPhone = decoded
	}
	if ownerPhone == "" {
		respondWithError(w, http.StatusBadRequest, "Owner phone number is required")
		return
	}

	xml := h.callService.ConnectCallXML(ownerPhone)
	if xml == "" {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Twilio service not available"))
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(xml))
}

// CallStatus receives asynchronous status events. Twilio has no user-facing
// error path, so this always acknowledges with 200 whatever arrives.
func (h *CallHandler) CallStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		h.callService.RecordCallStatus(
			r.PostFormValue("CallSid"),
			r.PostFormValue("CallStatus"),
			r.PostFormValue("CallDuration"),
		)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *CallHandler) callbackBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
