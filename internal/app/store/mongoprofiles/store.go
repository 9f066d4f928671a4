// internal/app/store/mongoprofiles/store.go
package mongoprofiles

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/dalemusser/groupsync/internal/app/system/profilestore"
	"github.com/dalemusser/groupsync/internal/app/system/signing"
	"github.com/dalemusser/groupsync/internal/app/system/timeouts"
	"github.com/dalemusser/groupsync/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// DefaultCollection holds one document per profile.
const DefaultCollection = "profiles"

// Store is a MongoDB-backed profile store for local deployments. Updates
// are partial: only user_id, active and the mozilliansorg attribute of the
// incoming profile are written onto the stored document.
type Store struct {
	c         *mongo.Collection
	signer    signing.Signer
	verifyKey *rsa.PublicKey
	log       *zap.Logger
}

var _ profilestore.Client = (*Store)(nil)

// New returns a Store over db.collection. When verifyKey is set, updates
// whose group attribute signature does not verify against it are rejected.
func New(db *mongo.Database, collection string, signer signing.Signer, verifyKey *rsa.PublicKey, logger *zap.Logger) *Store {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Store{
		c:         db.Collection(collection),
		signer:    signer,
		verifyKey: verifyKey,
		log:       logger,
	}
}

// Signer implements profilestore.Client.
func (s *Store) Signer() signing.Signer {
	return s.signer
}

func lookupField(by profilestore.GetBy) string {
	return by.String() + ".value"
}

// GetUserBy implements profilestore.Client. The display filter is not
// applied; every stored attribute is returned.
func (s *Store) GetUserBy(ctx context.Context, id string, by profilestore.GetBy, _ *string) (models.Profile, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Fetch(), s.log, "fetch profile")
	defer cancel()

	var p models.Profile
	err := s.c.FindOne(ctx, bson.M{lookupField(by): id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Profile{}, profilestore.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// UpdateUser implements profilestore.Client.
func (s *Store) UpdateUser(ctx context.Context, id string, profile models.Profile) error {
	if s.verifyKey != nil {
		if err := signing.Verify(&profile.AccessInformation.Mozilliansorg, s.verifyKey); err != nil {
			return fmt.Errorf("reject mozilliansorg attribute: %w", err)
		}
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Publish(), s.log, "publish profile")
	defer cancel()

	res, err := s.c.UpdateOne(ctx,
		bson.M{lookupField(profilestore.ByUserID): id},
		bson.M{"$set": bson.M{
			"active":                           profile.Active,
			"access_information.mozilliansorg": profile.AccessInformation.Mozilliansorg,
		}},
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return profilestore.ErrNotFound
	}
	return nil
}

// Insert stores a complete profile. Used to seed local data.
func (s *Store) Insert(ctx context.Context, p models.Profile) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Publish(), s.log, "insert profile")
	defer cancel()

	if p.ID() == "" {
		return errors.New("profile has no user_id")
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}
