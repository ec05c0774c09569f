package qrcode

import "time"

// QRCode binds a public scan URL to a vehicle owner's contact info.
// The phone field is the owner's real number and must never appear in
// public responses.
type QRCode struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	QRValue   string    `json:"qrValue"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicInfo is the subset safe to show to whoever scans the code.
type PublicInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (q *QRCode) ToPublicInfo() *PublicInfo {
	return &PublicInfo{
		ID:      q.ID,
		Name:    q.Name,
		Email:   q.Email,
		Address: q.Address,
	}
}
