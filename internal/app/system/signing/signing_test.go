package signing

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dalemusser/groupsync/internal/domain/models"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func groupsAttr(groups ...string) *models.StandardAttributeValues {
	values := make(map[string]*string, len(groups))
	for _, g := range groups {
		values[g] = nil
	}
	return &models.StandardAttributeValues{
		Metadata: models.Metadata{
			Classification: models.ClassificationPublic,
			Created:        "2024-01-02T03:04:05Z",
			LastModified:   "2024-01-02T03:04:05Z",
			Verified:       true,
		},
		Signature: models.Signature{
			Publisher: models.PublisherSignature{Name: models.PublisherMozilliansorg},
		},
		Values: values,
	}
}

func TestSignAttribute_SetsPublisherSignature(t *testing.T) {
	s := NewJWSSigner(testKey(t), "kid-1")
	attr := groupsAttr("a", "b")

	if err := s.SignAttribute(attr); err != nil {
		t.Fatalf("SignAttribute: %v", err)
	}

	pub := attr.Signature.Publisher
	if pub.Alg != "RS256" {
		t.Errorf("alg: got %q, want RS256", pub.Alg)
	}
	if pub.Typ != "JWS" {
		t.Errorf("typ: got %q, want JWS", pub.Typ)
	}
	if pub.Name != models.PublisherMozilliansorg {
		t.Errorf("publisher name changed to %q", pub.Name)
	}
	if strings.Count(pub.Value, ".") != 2 {
		t.Errorf("expected compact JWS, got %q", pub.Value)
	}
}

func TestVerify_RoundTrip(t *testing.T) {
	s := NewJWSSigner(testKey(t), "")
	attr := groupsAttr("mozilliansorg_nda")
	if err := s.SignAttribute(attr); err != nil {
		t.Fatalf("SignAttribute: %v", err)
	}

	if err := Verify(attr, s.PublicKey()); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	s := NewJWSSigner(testKey(t), "")
	attr := groupsAttr("a")
	if err := s.SignAttribute(attr); err != nil {
		t.Fatalf("SignAttribute: %v", err)
	}

	attr.Values["admins"] = nil

	err := Verify(attr, s.PublicKey())
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected ErrSignatureMismatch, got %v", err)
	}
}

func TestVerify_WrongKey(t *testing.T) {
	s := NewJWSSigner(testKey(t), "")
	attr := groupsAttr("a")
	if err := s.SignAttribute(attr); err != nil {
		t.Fatalf("SignAttribute: %v", err)
	}

	other := testKey(t)
	if err := Verify(attr, &other.PublicKey); err == nil {
		t.Fatal("expected verification with a different key to fail")
	}
}

func TestVerify_Unsigned(t *testing.T) {
	if err := Verify(groupsAttr("a"), &testKey(t).PublicKey); err == nil {
		t.Fatal("expected error for unsigned attribute")
	}
}

func TestCanonical_IgnoresSignature(t *testing.T) {
	a := groupsAttr("x", "y")
	b := groupsAttr("y", "x")
	b.Signature.Publisher.Value = "something"

	ca, err := Canonical(a)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	cb, err := Canonical(b)
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if string(ca) != string(cb) {
		t.Errorf("canonical forms differ:\n%s\n%s", ca, cb)
	}
	if strings.Contains(string(ca), "signature") {
		t.Errorf("canonical form contains signature: %s", ca)
	}
}

func TestLoadRSAKey(t *testing.T) {
	key := testKey(t)
	dir := t.TempDir()

	pkcs1 := filepath.Join(dir, "pkcs1.pem")
	writePEM(t, pkcs1, "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(key))

	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshal pkcs8: %v", err)
	}
	pkcs8 := filepath.Join(dir, "pkcs8.pem")
	writePEM(t, pkcs8, "PRIVATE KEY", der)

	for _, path := range []string{pkcs1, pkcs8} {
		got, err := LoadRSAKey(path)
		if err != nil {
			t.Fatalf("LoadRSAKey(%s): %v", filepath.Base(path), err)
		}
		if !got.Equal(key) {
			t.Errorf("LoadRSAKey(%s): key mismatch", filepath.Base(path))
		}
	}
}

func TestParseRSAKey_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not pem", []byte("hello")},
		{"wrong type", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1, 2, 3}})},
		{"garbage pkcs1", pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte{1, 2, 3}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRSAKey(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func writePEM(t *testing.T, path, typ string, der []byte) {
	t.Helper()
	data := pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der})
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
