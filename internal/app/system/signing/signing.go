// Package signing attaches and checks publisher signatures on profile
// attributes.
//
// An attribute is signed over its canonical form: the attribute's JSON with
// the "signature" block removed, keys sorted, no insignificant whitespace.
// The result is a compact JWS (RS256) whose payload is that canonical form,
// stored in Signature.Publisher.Value.
package signing

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/dalemusser/groupsync/internal/domain/models"
	"github.com/go-jose/go-jose/v4"
)

// Signer stamps a signature onto an attribute in place.
type Signer interface {
	SignAttribute(attr models.SignableAttribute) error
}

// ErrSignatureMismatch is returned by Verify when the signed payload does not
// match the attribute it is attached to.
var ErrSignatureMismatch = errors.New("signature does not match attribute")

const signatureType = "JWS"

// JWSSigner signs attributes with an RSA key.
type JWSSigner struct {
	key   *rsa.PrivateKey
	keyID string
}

// NewJWSSigner returns a signer for key. keyID is written into the JWS
// header as "kid" when non-empty.
func NewJWSSigner(key *rsa.PrivateKey, keyID string) *JWSSigner {
	return &JWSSigner{key: key, keyID: keyID}
}

// PublicKey returns the key that verifies this signer's signatures.
func (s *JWSSigner) PublicKey() *rsa.PublicKey {
	return &s.key.PublicKey
}

// SignAttribute implements Signer.
func (s *JWSSigner) SignAttribute(attr models.SignableAttribute) error {
	payload, err := Canonical(attr)
	if err != nil {
		return err
	}

	key := jose.JSONWebKey{Key: s.key, Algorithm: string(jose.RS256), KeyID: s.keyID}
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: key},
		(&jose.SignerOptions{}).WithType(signatureType),
	)
	if err != nil {
		return fmt.Errorf("create signer: %w", err)
	}
	obj, err := signer.Sign(payload)
	if err != nil {
		return fmt.Errorf("sign attribute: %w", err)
	}
	token, err := obj.CompactSerialize()
	if err != nil {
		return fmt.Errorf("serialize signature: %w", err)
	}

	sig := attr.PublisherSignature()
	sig.Alg = string(jose.RS256)
	sig.Typ = signatureType
	sig.Value = token
	return nil
}

// Verify checks that attr carries a publisher signature made by pub over the
// attribute's current canonical form.
func Verify(attr models.SignableAttribute, pub *rsa.PublicKey) error {
	sig := attr.PublisherSignature()
	if sig.Value == "" {
		return errors.New("attribute is not signed")
	}
	obj, err := jose.ParseSigned(sig.Value, []jose.SignatureAlgorithm{jose.RS256})
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}
	payload, err := obj.Verify(pub)
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}
	want, err := Canonical(attr)
	if err != nil {
		return err
	}
	if !bytes.Equal(payload, want) {
		return ErrSignatureMismatch
	}
	return nil
}

// Canonical returns the bytes an attribute signature covers.
func Canonical(attr models.SignableAttribute) ([]byte, error) {
	raw, err := json.Marshal(attr)
	if err != nil {
		return nil, fmt.Errorf("marshal attribute: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decode attribute: %w", err)
	}
	delete(fields, "signature")
	// encoding/json writes map keys in sorted order.
	out, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal canonical attribute: %w", err)
	}
	return out, nil
}

// LoadRSAKey reads a PEM encoded RSA private key (PKCS#1 or PKCS#8).
func LoadRSAKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	return ParseRSAKey(data)
}

// ParseRSAKey decodes a PEM encoded RSA private key (PKCS#1 or PKCS#8).
func ParseRSAKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("invalid PEM block in signing key")
	}
	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse signing key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse signing key: %w", err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("signing key is not an RSA key")
		}
		return key, nil
	default:
		return nil, fmt.Errorf("unsupported PEM block type %q", block.Type)
	}
}
