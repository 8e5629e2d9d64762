package token

import "time"

// Maker creates and verifies staff session tokens.
type Maker interface {
	CreateToken(subject Subject, duration time.Duration) (string, error)

	VerifyToken(token string) (*Payload, error)
}
