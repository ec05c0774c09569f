package user

type UpgradeRequest struct {
	Email        string `json:"email"`
	PaymentToken string `json:"paymentToken,omitempty"`
}

type UpgradeResponse struct {
	Email string `json:"email"`
	Plan  string `json:"plan"`
}

// InfoResponse is the public user summary. For a never-seen email only
// Exists, Plan and QRCount are populated.
type InfoResponse struct {
	Exists  bool   `json:"exists"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Plan    string `json:"plan"`
	QRCount int    `json:"qrCount"`
}

type Summary struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Plan    string `json:"plan"`
	QRCount int    `json:"qrCount"`
}
