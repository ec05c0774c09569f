package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"parkingQrAPI/internal/apperr"
	"parkingQrAPI/internal/qrcode"
	"parkingQrAPI/internal/user"
	"parkingQrAPI/services"
	"parkingQrAPI/utils"

	"github.com/gorilla/mux"
)

type QRCodeHandler struct {
	qrService   *services.QRCodeService
	userService *services.UserService

	// baseURL overrides request-derived addresses when set; the QR target
	// must be reachable from outside.
	baseURL string
}

func NewQRCodeHandler(qrService *services.QRCodeService, userService *services.UserService, baseURL string) *QRCodeHandler {
	return &QRCodeHandler{
		qrService:   qrService,
		userService: userService,
		baseURL:     baseURL,
	}
}

func (h *QRCodeHandler) GenerateQRCode(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req qrcode.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := utils.ValidateQRGenerate(req.Name, req.Email, req.Address, req.Phone); len(errs) > 0 {
		respondWithAppError(w, apperr.Validation(strings.Join(errs, ", ")))
		return
	}

	u, err := h.userService.GetOrCreateUser(ctx, req.Email, req.Name)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	qrCount, err := h.qrService.GetQRCodeCount(ctx, u.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	if admission := h.userService.CanGenerateQR(u, qrCount); !admission.Allowed {
		respondWithAppError(w, apperr.Forbidden(
			"Free plan limit reached. Upgrade to premium for unlimited QR codes."))
		return
	}

	qr, image, err := h.qrService.CreateQRCode(ctx, &req, u.ID, h.requestBaseURL(r))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	updatedCount, err := h.qrService.GetQRCodeCount(ctx, u.ID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, "QR code generated successfully", &qrcode.GenerateResponse{
		QRCode:     qr,
		QRImageB64: image,
		User: &user.Summary{
			Email:   u.Email,
			Name:    u.Name,
			Plan:    u.Plan,
			QRCount: updatedCount,
		},
	})
}

// GetQRCodeInfo serves whoever scanned the code. The owner's phone number
// stays out of this response; only the call flow may use it.
func (h *QRCodeHandler) GetQRCodeInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	qrID := mux.Vars(r)["qrId"]
	if qrID == "" {
		respondWithError(w, http.StatusBadRequest, "QR ID is required")
		return
	}

	qr, err := h.qrService.GetQRCodeByID(ctx, qrID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithSuccess(w, http.StatusOK, "QR code info retrieved successfully", qr.ToPublicInfo())
}

func (h *QRCodeHandler) requestBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
