package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	qrc "github.com/skip2/go-qrcode"

	"parkingQrAPI/internal/apperr"
	"parkingQrAPI/internal/database"
	"parkingQrAPI/internal/qrcode"
)

type QRCodeService struct {
	store database.Store
}

func NewQRCodeService(store database.Store) *QRCodeService {
	return &QRCodeService{store: store}
}

// CreateQRCode assigns the id before the single persist so the stored
// qrValue always matches the stored id. The store never reassigns ids.
func (s *QRCodeService) CreateQRCode(ctx context.Context, req *qrcode.GenerateRequest, userID, baseURL string) (*qrcode.QRCode, string, error) {
	id := uuid.New().String()

	qr := &qrcode.QRCode{
		ID:        id,
		UserID:    userID,
		QRValue:   fmt.Sprintf("%s/scan/%s", baseURL, id),
		Name:      req.Name,
		Email:     req.Email,
		Address:   req.Address,
		Phone:     req.Phone,
		CreatedAt: time.Now(),
	}

	saved, err := s.store.CreateQRCode(ctx, qr)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save qr code: %w", err)
	}

	// The printable image is best effort; the record is already persisted.
	image := ""
	png, err := qrc.Encode(saved.QRValue, qrc.Medium, 256)
	if err != nil {
		log.Printf("QRCodeService: failed to render qr image for %s: %v", saved.ID, err)
	} else {
		image = base64.StdEncoding.EncodeToString(png)
	}

	return saved, image, nil
}

func (s *QRCodeService) GetQRCodeByID(ctx context.Context, id string) (*qrcode.QRCode, error) {
	qr, err := s.store.FindQRCodeByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("QR code")
		}
		return nil, fmt.Errorf("failed to get qr code: %w", err)
	}
	return qr, nil
}

func (s *QRCodeService) GetUserQRCodes(ctx context.Context, userID string) ([]*qrcode.QRCode, error) {
	return s.store.FindQRCodesByUserID(ctx, userID)
}

func (s *QRCodeService) GetQRCodeCount(ctx context.Context, userID string) (int, error) {
	return s.store.CountQRCodesByUserID(ctx, userID)
}
