package token

import (
	"errors"
	"fmt"
	"time"

	"tts-guard-backend/utils"

	"github.com/google/uuid"
)

var ErrExpired = errors.New("token has expired")

// Subject identifies the staff member a token is issued to.
type Subject struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type Payload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

func NewPayload(subject Subject, duration time.Duration) (*Payload, error) {
	if subject.Email == "" {
		return nil, errors.New("email cannot be empty")
	}
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}

	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().In(utils.DateLocation)
	return &Payload{
		ID:        tokenID,
		UserID:    subject.UserID,
		Email:     subject.Email,
		Role:      subject.Role,
		IssuedAt:  issuedAt,
		ExpiredAt: issuedAt.Add(duration),
	}, nil
}

func (p *Payload) Valid() error {
	if time.Now().In(utils.DateLocation).After(p.ExpiredAt) {
		return ErrExpired
	}
	return nil
}

// GetEmail lets handlers record who made a change without importing token.
func (p *Payload) GetEmail() string {
	if p == nil {
		return ""
	}
	return p.Email
}

// Subject returns the identity the token was issued for.
func (p *Payload) Subject() Subject {
	return Subject{UserID: p.UserID, Email: p.Email, Role: p.Role}
}

func (p *Payload) String() string {
	return fmt.Sprintf("ID: %s, Email: %s, Role: %s, ExpiredAt: %s", p.ID, p.Email, p.Role, p.ExpiredAt)
}
