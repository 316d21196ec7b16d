package auth

import (
	"time"

	"github.com/google/uuid"
)

// Claim names understood by Principal.Claim.
const (
	ClaimName     = "Name"
	ClaimSurname  = "Surname"
	ClaimCity     = "City"
	ClaimUsername = "Username"
	ClaimEmail    = "Email"
)

// Principal is the authenticated identity of the current request.
type Principal struct {
	UserID    uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	City      string    `json:"city"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claim returns the value of a named identity claim.
func (p *Principal) Claim(name string) (string, bool) {
	switch name {
	case ClaimName:
		return p.Name, true
	case ClaimSurname:
		return p.Surname, true
	case ClaimCity:
		return p.City, true
	case ClaimUsername:
		return p.Username, true
	case ClaimEmail:
		return p.Email, true
	}
	return "", false
}
