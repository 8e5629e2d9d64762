package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// StringToUUIDPtr converts a string to UUID pointer
func StringToUUIDPtr(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &u
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ParseUUIDParam parses a path or query value, naming the field on failure.
func ParseUUIDParam(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %q", field, value)
	}
	return id, nil
}

// ActorFromLocals returns the email of the authenticated staff member, or
// "system" when the route is unauthenticated.
func ActorFromLocals(locals interface{}) string {
	type emailer interface{ GetEmail() string }
	if p, ok := locals.(emailer); ok && p.GetEmail() != "" {
		return p.GetEmail()
	}
	return "system"
}
