package models

import (
	"strings"

	"github.com/google/uuid"
)

// ParseID parses a client-supplied id, returning invalid when it is not a UUID.
func ParseID(raw string, invalid error) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid
	}
	return id, nil
}
