package database

import (
	"context"
	"errors"
	"fmt"

	"parkingQrAPI/internal/config"
	"parkingQrAPI/internal/qrcode"
	"parkingQrAPI/internal/user"
)

// ErrNotFound is returned by every backend for unknown ids and emails.
var ErrNotFound = errors.New("record not found")

// Store is the persistence boundary. One implementation per backend;
// selection happens once at startup via config, and the returned store
// owns its connection handle until Close.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) (*user.User, error)
	UpdateUserPlan(ctx context.Context, email, plan string) (*user.User, error)

	CreateQRCode(ctx context.Context, qr *qrcode.QRCode) (*qrcode.QRCode, error)
	FindQRCodeByID(ctx context.Context, id string) (*qrcode.QRCode, error)
	FindQRCodesByUserID(ctx context.Context, userID string) ([]*qrcode.QRCode, error)
	CountQRCodesByUserID(ctx context.Context, userID string) (int, error)

	Ping(ctx context.Context) error
	Close()
}

// New selects the backend from configuration.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DBType {
	case "postgres":
		return NewPostgresStore(ctx, cfg.DBURL)
	case "json":
		return NewJSONStore(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown DB_TYPE %q", cfg.DBType)
	}
}
