// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Profile store backends.
const (
	StoreCIS   = "cis"
	StoreMongo = "mongo"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers the HTTP server, TLS, logging level and
// request limits. Everything below is about the update pipeline and the
// profile store it writes to.
type AppConfig struct {
	// Update queue
	QueueSize int // bound on pending messages; extra messages are dropped

	// Which profile store the worker talks to: "cis" or "mongo"
	StoreType string

	// CIS person/change APIs (StoreType "cis")
	CISPersonAPIURL string
	CISChangeAPIURL string
	CISTokenURL     string // client-credentials endpoint; blank disables auth
	CISClientID     string
	CISClientSecret string
	CISAudience     string

	// Attribute signing
	SigningKeyPath string // PEM RSA private key; blank generates an ephemeral key in dev
	SigningKeyID   string // "kid" header on produced signatures

	// MongoDB (StoreType "mongo")
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	// Per-call deadlines used by the store clients
	TimeoutFetch   time.Duration
	TimeoutPublish time.Duration

	// Origins allowed to call the update endpoints; empty allows any
	CORSAllowedOrigins []string
}
