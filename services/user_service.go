package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"parkingQrAPI/internal/apperr"
	"parkingQrAPI/internal/database"
	"parkingQrAPI/internal/user"
)

type UserService struct {
	store database.Store

	// freeQRLimit caps QR codes on the free plan; zero or negative means
	// unbounded. Premium is always unbounded.
	freeQRLimit int
}

func NewUserService(store database.Store, freeQRLimit int) *UserService {
	return &UserService{store: store, freeQRLimit: freeQRLimit}
}

// GetOrCreateUser looks a user up by lowercased email and creates one on
// first contact. Two racing first-contact requests for the same email can
// both miss the lookup; the store's uniqueness constraint is the backstop.
func (s *UserService) GetOrCreateUser(ctx context.Context, email, name string) (*user.User, error) {
	email = strings.ToLower(email)

	u, err := s.store.FindUserByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	u = &user.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Plan:      user.PlanFree,
		CreatedAt: time.Now(),
	}
	return s.store.CreateUser(ctx, u)
}

func (s *UserService) GetUserInfo(ctx context.Context, email string) (*user.InfoResponse, error) {
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &user.InfoResponse{Exists: false, Plan: user.PlanFree, QRCount: 0}, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	count, err := s.store.CountQRCodesByUserID(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count qr codes: %w", err)
	}

	return &user.InfoResponse{
		Exists:  true,
		Email:   u.Email,
		Name:    u.Name,
		Plan:    u.Plan,
		QRCount: count,
	}, nil
}

func (s *UserService) UpgradeToPremium(ctx context.Context, email string) (*user.User, error) {
	u, err := s.store.UpdateUserPlan(ctx, email, user.PlanPremium)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("failed to upgrade user: %w", err)
	}
	return u, nil
}

type QRAdmission struct {
	Allowed bool
	Limit   int
	Current int
}

// CanGenerateQR applies the plan cap. Limit 0 in the result means unbounded.
func (s *UserService) CanGenerateQR(u *user.User, qrCount int) QRAdmission {
	if u.IsPremium() || s.freeQRLimit <= 0 {
		return QRAdmission{Allowed: true, Limit: 0, Current: qrCount}
	}
	return QRAdmission{
		Allowed: qrCount < s.freeQRLimit,
		Limit:   s.freeQRLimit,
		Current: qrCount,
	}
}
