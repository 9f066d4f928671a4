// Package profilestore defines the contract the update worker uses to read
// and publish identity profiles.
package profilestore

import (
	"context"
	"errors"

	"github.com/dalemusser/groupsync/internal/app/system/signing"
	"github.com/dalemusser/groupsync/internal/domain/models"
)

// GetBy selects which identifier GetUserBy looks a profile up by.
type GetBy int

const (
	ByUserID GetBy = iota
	ByUUID
	ByPrimaryEmail
	ByPrimaryUsername
)

// String returns the path segment the person API uses for this lookup.
func (b GetBy) String() string {
	switch b {
	case ByUUID:
		return "uuid"
	case ByPrimaryEmail:
		return "primary_email"
	case ByPrimaryUsername:
		return "primary_username"
	default:
		return "user_id"
	}
}

// ErrNotFound is returned when no profile matches the lookup.
var ErrNotFound = errors.New("profile not found")

// Client reads and publishes profiles. Implementations are safe for
// concurrent use and own their per-call deadlines.
type Client interface {
	// GetUserBy fetches a profile. filter optionally restricts the returned
	// attributes by display level.
	GetUserBy(ctx context.Context, id string, by GetBy, filter *string) (models.Profile, error)
	// UpdateUser publishes a (partial) profile for the given user id.
	UpdateUser(ctx context.Context, id string, profile models.Profile) error
	// Signer returns the signer attributes must be signed with before publishing.
	Signer() signing.Signer
}
