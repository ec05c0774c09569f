package qrcode

import "parkingQrAPI/internal/user"

type GenerateRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type GenerateResponse struct {
	QRCode     *QRCode       `json:"qrCode"`
	QRImageB64 string        `json:"qrImageBase64,omitempty"`
	User       *user.Summary `json:"user"`
}

type InitiateCallRequest struct {
	QRID        string `json:"qrId"`
	CallerPhone string `json:"callerPhone,omitempty"`
}
