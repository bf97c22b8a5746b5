// Package storage provides persistence for debate sessions.
package storage

import (
	"github.com/rhetorlabs/rhetor/internal/core"
)

// Storage defines the interface for session persistence.
type Storage interface {
	// Initialize sets up the storage (creates tables, etc.)
	Initialize() error

	// Close closes the storage connection.
	Close() error

	// Session operations
	CreateSession(session *core.Session) error
	GetSession(id string) (*core.Session, error)
	UpdateSession(session *core.Session) error
	DeleteSession(id string) error
	ListSessions(limit, offset int) ([]*core.SessionSummary, error)

	// Argument operations
	AddArgument(arg *core.Argument) error
	GetArguments(sessionID string) ([]*core.Argument, error)
}
