// internal/app/system/groupattr/groupattr.go
package groupattr

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/groupsync/internal/app/system/signing"
	"github.com/dalemusser/groupsync/internal/domain/models"
)

// Publisher is the authority stamped on every attribute this service writes.
const Publisher = models.PublisherMozilliansorg

// ErrSigningFailed wraps any error returned by the signer.
var ErrSigningFailed = errors.New("signing failed")

// UpdateGroups builds the minimal profile that replaces profile's mozilliansorg
// groups with groups, and signs the group attribute.
//
// Only user_id, active and the group attribute are carried into the result.
// The existing group attribute's metadata and signature block is the starting
// point; created is only filled in when the attribute was never written or
// has no created timestamp. On signer failure no profile is returned.
func UpdateGroups(profile models.Profile, groups []string, signer signing.Signer, now time.Time) (models.Profile, error) {
	stamp := now.UTC().Format(models.TimestampLayout)

	var updated models.Profile
	updated.UserID = profile.UserID
	updated.Active = profile.Active

	attr := profile.AccessInformation.Mozilliansorg
	if attr.Values == nil || attr.Metadata.Created == "" {
		attr.Metadata.Created = stamp
	}

	values := make(map[string]*string, len(groups))
	for _, g := range groups {
		values[g] = nil
	}
	attr.Values = values

	attr.Signature.Publisher.Name = Publisher
	attr.Metadata.LastModified = stamp
	attr.Metadata.Verified = true

	if err := signer.SignAttribute(&attr); err != nil {
		return models.Profile{}, fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}

	updated.AccessInformation.Mozilliansorg = attr
	return updated, nil
}
