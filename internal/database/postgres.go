package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"parkingQrAPI/internal/qrcode"
	"parkingQrAPI/internal/user"
)

// PostgresStore runs against a pgx pool. The unique index on lower(email)
// in the users table is what closes the concurrent first-contact race; the
// service layer makes no attempt to prevent it.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: pool}, nil
}

func (s *PostgresStore) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
	SELECT id, email, name, plan, created_at
	FROM users
	WHERE email = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, strings.ToLower(email)).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Plan,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *user.User) (*user.User, error) {
	query := `
	INSERT INTO users (id, email, name, plan, created_at)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, email, name, plan, created_at
	`

	created := &user.User{}
	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		strings.ToLower(u.Email),
		u.Name,
		u.Plan,
		u.CreatedAt,
	).Scan(
		&created.ID,
		&created.Email,
		&created.Name,
		&created.Plan,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

func (s *PostgresStore) UpdateUserPlan(ctx context.Context, email, plan string) (*user.User, error) {
	query := `
	UPDATE users
	SET plan = $2
	WHERE email = $1
	RETURNING id, email, name, plan, created_at
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, strings.ToLower(email), plan).Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Plan,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user plan: %w", err)
	}

	return u, nil
}

func (s *PostgresStore) CreateQRCode(ctx context.Context, qr *qrcode.QRCode) (*qrcode.QRCode, error) {
	query := `
	INSERT INTO qr_codes (id, user_id, qr_value, name, email, address, phone, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, user_id, qr_value, name, email, address, phone, created_at
	`

	created := &qrcode.QRCode{}
	err := s.db.QueryRow(
		ctx,
		query,
		qr.ID,
		qr.UserID,
		qr.QRValue,
		qr.Name,
		strings.ToLower(qr.Email),
		qr.Address,
		qr.Phone,
		qr.CreatedAt,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.QRValue,
		&created.Name,
		&created.Email,
		&created.Address,
		&created.Phone,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create qr code: %w", err)
	}

	return created, nil
}

func (s *PostgresStore) FindQRCodeByID(ctx context.Context, id string) (*qrcode.QRCode, error) {
	query := `
	SELECT id, user_id, qr_value, name, email, address, phone, created_at
	FROM qr_codes
	WHERE id = $1
	`

	qr := &qrcode.QRCode{}
	err := s.db.QueryRow(ctx, query, id).Scan(
		&qr.ID,
		&qr.UserID,
		&qr.QRValue,
		&qr.Name,
		&qr.Email,
		&qr.Address,
		&qr.Phone,
		&qr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get qr code: %w", err)
	}

	return qr, nil
}

func (s *PostgresStore) FindQRCodesByUserID(ctx context.Context, userID string) ([]*qrcode.QRCode, error) {
	query := `
	SELECT id, user_id, qr_value, name, email, address, phone, created_at
	FROM qr_codes
	WHERE user_id = $1
	ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qr codes: %w", err)
	}
	defer rows.Close()

	codes := []*qrcode.QRCode{}
	for rows.Next() {
		qr := &qrcode.QRCode{}
		if err := rows.Scan(
			&qr.ID,
			&qr.UserID,
			&qr.QRValue,
			&qr.Name,
			&qr.Email,
			&qr.Address,
			&qr.Phone,
			&qr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan qr code: %w", err)
		}
		codes = append(codes, qr)
	}

	return codes, rows.Err()
}

func (s *PostgresStore) CountQRCodesByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM qr_codes WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count qr codes: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *PostgresStore) Close() {
	s.db.Close()
}
