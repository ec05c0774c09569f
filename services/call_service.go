package services

import (
	"context"
	"log"

	"parkingQrAPI/internal/apperr"
)

// CallResponse covers every terminal shape of the initiate flow: demo mode,
// awaiting a caller phone, or a placed call.
type CallResponse struct {
	Success             bool   `json:"success"`
	Message             string `json:"message"`
	MaskedNumber        string `json:"maskedNumber,omitempty"`
	OwnerPhone          string `json:"ownerPhone,omitempty"`
	Note                string `json:"note,omitempty"`
	RequiresPhoneNumber bool   `json:"requiresPhoneNumber,omitempty"`
	CallSid             string `json:"callSid,omitempty"`
	Status              string `json:"status,omitempty"`
}

// CallService orchestrates the masked-call flow. It holds no call state:
// once the provider accepts the outbound leg, everything else happens via
// the stateless connect and status webhooks.
type CallService struct {
	qrService *QRCodeService
	provider  CallProvider
}

func NewCallService(qrService *QRCodeService, provider CallProvider) *CallService {
	return &CallService{qrService: qrService, provider: provider}
}

// InitiateCall resolves the scanned code and either places the call, asks
// for the caller's number, or falls back to the demo response when the
// provider is unconfigured. The demo path discloses the owner's number and
// is acceptable only where privacy does not matter.
func (s *CallService) InitiateCall(ctx context.Context, qrID, callerPhone, baseURL string) (*CallResponse, error) {
	qr, err := s.qrService.GetQRCodeByID(ctx, qrID)
	if err != nil {
		return nil, err
	}

	if !s.provider.Enabled() {
		return &CallResponse{
			Success:      true,
			Message:      "Call initiated successfully",
			MaskedNumber: qr.Phone,
			OwnerPhone:   qr.Phone,
			Note:         "This is a demo. In production, this would initiate a real masked call via Twilio.",
		}, nil
	}

	if callerPhone == "" {
		return &CallResponse{
			Success:             true,
			Message:             "Please provide your phone number to receive the masked call.",
			RequiresPhoneNumber: true,
		}, nil
	}

	result, err := s.provider.CreateMaskedCall(ctx, callerPhone, qr.Phone, baseURL)
	if err != nil {
		log.Printf("CallService: provider call failed for qr %s: %v", qrID, err)
		return nil, apperr.Upstream("Failed to initiate call", err)
	}

	return &CallResponse{
		Success:      true,
		Message:      result.Message,
		MaskedNumber: result.MaskedNumber,
		CallSid:      result.CallSid,
		Status:       result.Status,
	}, nil
}

// ConnectCallXML regenerates the bridge script for the provider's mid-call
// fetch. Empty string means the integration is unavailable.
func (s *CallService) ConnectCallXML(ownerPhone string) string {
	if !s.provider.Enabled() {
		return ""
	}
	return s.provider.ConnectTwiML(ownerPhone)
}

// RecordCallStatus logs a provider status event. Nothing downstream depends
// on these; the webhook acknowledges no matter what arrives.
func (s *CallService) RecordCallStatus(callSid, callStatus, duration string) {
	log.Printf("Call status update: sid=%s status=%s duration=%s", callSid, callStatus, duration)
}
