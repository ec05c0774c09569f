package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"parkingQrAPI/internal/qrcode"
	"parkingQrAPI/internal/user"
)

type jsonData struct {
	Users   []*user.User     `json:"users"`
	QRCodes []*qrcode.QRCode `json:"qrCodes"`
}

// JSONStore persists everything in a single JSON file. Every operation is a
// whole-file read-modify-write behind a mutex, so concurrent requests within
// one process cannot interleave.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

func NewJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.write(&jsonData{Users: []*user.User{}, QRCodes: []*qrcode.QRCode{}}); err != nil {
			return nil, fmt.Errorf("failed to initialize database file: %w", err)
		}
	}
	return s, nil
}

func (s *JSONStore) read() (*jsonData, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}
	data := &jsonData{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("failed to parse database file: %w", err)
	}
	return data, nil
}

func (s *JSONStore) write(data *jsonData) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write database file: %w", err)
	}
	return nil
}

func (s *JSONStore) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	for _, u := range data.Users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONStore) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	stored := *u
	stored.Email = strings.ToLower(u.Email)
	data.Users = append(data.Users, &stored)
	if err := s.write(data); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *JSONStore) UpdateUserPlan(ctx context.Context, email, plan string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(email)
	for _, u := range data.Users {
		if u.Email == email {
			u.Plan = plan
			if err := s.write(data); err != nil {
				return nil, err
			}
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONStore) CreateQRCode(ctx context.Context, qr *qrcode.QRCode) (*qrcode.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	stored := *qr
	stored.Email = strings.ToLower(qr.Email)
	data.QRCodes = append(data.QRCodes, &stored)
	if err := s.write(data); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *JSONStore) FindQRCodeByID(ctx context.Context, id string) (*qrcode.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	for _, qr := range data.QRCodes {
		if qr.ID == id {
			return qr, nil
		}
	}
	return nil, ErrNotFound
}

func (s *JSONStore) FindQRCodesByUserID(ctx context.Context, userID string) ([]*qrcode.QRCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return nil, err
	}
	codes := []*qrcode.QRCode{}
	for _, qr := range data.QRCodes {
		if qr.UserID == userID {
			codes = append(codes, qr)
		}
	}
	return codes, nil
}

func (s *JSONStore) CountQRCodesByUserID(ctx context.Context, userID string) (int, error) {
	codes, err := s.FindQRCodesByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(codes), nil
}

func (s *JSONStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.read()
	return err
}

func (s *JSONStore) Close() {}
