// internal/domain/models/profile.go
package models

// PublisherAuthority identifies the system that last wrote and signed an attribute.
type PublisherAuthority string

const (
	PublisherLDAP           PublisherAuthority = "ldap"
	PublisherMozilliansorg  PublisherAuthority = "mozilliansorg"
	PublisherHRIS           PublisherAuthority = "hris"
	PublisherCIS            PublisherAuthority = "cis"
	PublisherAccessProvider PublisherAuthority = "access_provider"
)

// ClassificationPublic is the default classification of a new attribute.
const ClassificationPublic = "PUBLIC"

// TimestampLayout is the format of Metadata.Created and Metadata.LastModified:
// UTC, second precision, "Z" suffix.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Metadata tracks provenance of a single attribute, independent of the
// profile it belongs to.
type Metadata struct {
	Classification string  `bson:"classification" json:"classification"`
	LastModified   string  `bson:"last_modified" json:"last_modified"`
	Created        string  `bson:"created" json:"created"`
	Verified       bool    `bson:"verified" json:"verified"`
	Display        *string `bson:"display,omitempty" json:"display,omitempty"`
}

// PublisherSignature is one signature over an attribute.
type PublisherSignature struct {
	Alg   string             `bson:"alg" json:"alg"`
	Typ   string             `bson:"typ" json:"typ"`
	Name  PublisherAuthority `bson:"name" json:"name"`
	Value string             `bson:"value" json:"value"`
}

// Signature is the signature block every attribute carries.
type Signature struct {
	Publisher  PublisherSignature   `bson:"publisher" json:"publisher"`
	Additional []PublisherSignature `bson:"additional" json:"additional"`
}

// SignableAttribute is implemented by every attribute type so a signer can
// stamp the publisher signature in place.
type SignableAttribute interface {
	PublisherSignature() *PublisherSignature
}

// StandardAttributeString is a signed single string value.
type StandardAttributeString struct {
	Metadata  Metadata  `bson:"metadata" json:"metadata"`
	Signature Signature `bson:"signature" json:"signature"`
	Value     *string   `bson:"value" json:"value"`
}

// PublisherSignature implements SignableAttribute.
func (a *StandardAttributeString) PublisherSignature() *PublisherSignature {
	return &a.Signature.Publisher
}

// StandardAttributeBoolean is a signed boolean value.
type StandardAttributeBoolean struct {
	Metadata  Metadata  `bson:"metadata" json:"metadata"`
	Signature Signature `bson:"signature" json:"signature"`
	Value     *bool     `bson:"value" json:"value"`
}

// PublisherSignature implements SignableAttribute.
func (a *StandardAttributeBoolean) PublisherSignature() *PublisherSignature {
	return &a.Signature.Publisher
}

// StandardAttributeValues is a signed key/value attribute. A nil Values map
// means the attribute has never been written; an empty non-nil map means it
// was written with no entries. Per-key values are reserved and currently nil.
type StandardAttributeValues struct {
	Metadata  Metadata           `bson:"metadata" json:"metadata"`
	Signature Signature          `bson:"signature" json:"signature"`
	Values    map[string]*string `bson:"values" json:"values"`
}

// PublisherSignature implements SignableAttribute.
func (a *StandardAttributeValues) PublisherSignature() *PublisherSignature {
	return &a.Signature.Publisher
}

// AccessInformation groups the attributes describing a user's access.
// Only Mozilliansorg is written by this service.
type AccessInformation struct {
	Mozilliansorg  StandardAttributeValues  `bson:"mozilliansorg" json:"mozilliansorg"`
	LDAP           *StandardAttributeValues `bson:"ldap,omitempty" json:"ldap,omitempty"`
	HRIS           *StandardAttributeValues `bson:"hris,omitempty" json:"hris,omitempty"`
	AccessProvider *StandardAttributeValues `bson:"access_provider,omitempty" json:"access_provider,omitempty"`
}

// Profile is a user's identity record as stored by the profile store.
//
// Outgoing updates only carry UserID, Active and AccessInformation.Mozilliansorg;
// the optional fields stay nil so they are left out of the payload.
type Profile struct {
	UserID            StandardAttributeString  `bson:"user_id" json:"user_id"`
	Active            StandardAttributeBoolean `bson:"active" json:"active"`
	PrimaryEmail      *StandardAttributeString `bson:"primary_email,omitempty" json:"primary_email,omitempty"`
	PrimaryUsername   *StandardAttributeString `bson:"primary_username,omitempty" json:"primary_username,omitempty"`
	FirstName         *StandardAttributeString `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName          *StandardAttributeString `bson:"last_name,omitempty" json:"last_name,omitempty"`
	AccessInformation AccessInformation        `bson:"access_information" json:"access_information"`
}

// ID returns the profile's user id, or "" when unset.
func (p Profile) ID() string {
	if p.UserID.Value == nil {
		return ""
	}
	return *p.UserID.Value
}

// GroupUpdate requests that a user's mozilliansorg groups be replaced with Groups.
// Groups has set semantics: order is irrelevant and duplicates collapse.
type GroupUpdate struct {
	UserID string   `json:"user_id"`
	Groups []string `json:"groups"`
}
