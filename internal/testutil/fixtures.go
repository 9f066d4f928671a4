package testutil

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/groupsync/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv names the environment variable that enables MongoDB-backed tests.
const MongoURIEnv = "GROUPSYNC_TEST_MONGO_URI"

// TestContext returns a context with a timeout suitable for a single test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB connects to the MongoDB named by GROUPSYNC_TEST_MONGO_URI and
// returns a fresh database that is dropped when the test ends. The test is
// skipped when the variable is unset.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		t.Skipf("%s not set; skipping MongoDB test", MongoURIEnv)
	}

	ctx, cancel := TestContext()
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect to test MongoDB: %v", err)
	}

	name := "groupsync_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

// Profile returns a stored-profile fixture for userID with a few attributes
// the service never writes, plus the given existing groups.
func Profile(userID string, groups ...string) models.Profile {
	uid := userID
	active := true
	email := "user@example.com"
	name := "Test"

	p := models.Profile{
		UserID:       models.StandardAttributeString{Value: &uid},
		Active:       models.StandardAttributeBoolean{Value: &active},
		PrimaryEmail: &models.StandardAttributeString{Value: &email},
		FirstName:    &models.StandardAttributeString{Value: &name},
	}
	p.AccessInformation.Mozilliansorg.Metadata.Classification = models.ClassificationPublic
	if len(groups) > 0 {
		values := make(map[string]*string, len(groups))
		for _, g := range groups {
			values[g] = nil
		}
		p.AccessInformation.Mozilliansorg.Values = values
		p.AccessInformation.Mozilliansorg.Metadata.Created = "2020-01-01T00:00:00Z"
		p.AccessInformation.Mozilliansorg.Metadata.LastModified = "2020-01-01T00:00:00Z"
	}
	return p
}
