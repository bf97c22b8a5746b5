package core

import (
	"github.com/google/uuid"
)

// GenerateID returns a new random identifier for sessions and arguments.
func GenerateID() string {
	return uuid.NewString()
}
