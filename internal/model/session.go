package model

// SessionRequest is the identity payload posted to issue a session cookie.
type SessionRequest struct {
	Email string `json:"email"`
}

// SuccessResponse acknowledges cookie issuance and logout.
type SuccessResponse struct {
	Success bool `json:"success"`
}
