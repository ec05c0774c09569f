package user

import "time"

const (
	PlanFree    = "free"
	PlanPremium = "premium"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Plan      string    `json:"plan"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) IsPremium() bool {
	return u.Plan == PlanPremium
}
