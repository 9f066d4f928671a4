// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/groupsync/internal/app/system/profilestore"
	"github.com/dalemusser/groupsync/internal/app/system/updater"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds back-end dependencies for the app.
type DBDeps struct {
	// Set only when StoreType is "mongo".
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Store    profilestore.Client
	Updater  *updater.Updater
	Registry *prometheus.Registry
}
