package mongoprofiles

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/groupsync/internal/app/system/groupattr"
	"github.com/dalemusser/groupsync/internal/app/system/profilestore"
	"github.com/dalemusser/groupsync/internal/app/system/signing"
	"github.com/dalemusser/groupsync/internal/testutil"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*Store, *rsa.PrivateKey) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	signer := signing.NewJWSSigner(key, "")
	return New(db, "", signer, &key.PublicKey, zap.NewNop()), key
}

func TestGetUserBy_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := s.GetUserBy(ctx, "nobody", profilestore.ByUserID, nil)
	if !errors.Is(err, profilestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetUserBy_ByEmail(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Insert(ctx, testutil.Profile("u1", "a")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	p, err := s.GetUserBy(ctx, "user@example.com", profilestore.ByPrimaryEmail, nil)
	if err != nil {
		t.Fatalf("GetUserBy: %v", err)
	}
	if p.ID() != "u1" {
		t.Errorf("user_id: got %q", p.ID())
	}
}

func TestUpdateUser_PartialUpdate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Insert(ctx, testutil.Profile("u1", "old")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	stored, err := s.GetUserBy(ctx, "u1", profilestore.ByUserID, nil)
	if err != nil {
		t.Fatalf("GetUserBy: %v", err)
	}

	updated, err := groupattr.UpdateGroups(stored, []string{"a", "b"}, s.Signer(), time.Now())
	if err != nil {
		t.Fatalf("UpdateGroups: %v", err)
	}
	if err := s.UpdateUser(ctx, "u1", updated); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUserBy(ctx, "u1", profilestore.ByUserID, nil)
	if err != nil {
		t.Fatalf("GetUserBy: %v", err)
	}
	groups := got.AccessInformation.Mozilliansorg.Values
	if len(groups) != 2 {
		t.Errorf("groups: got %v", groups)
	}
	if got.AccessInformation.Mozilliansorg.Metadata.Created != "2020-01-01T00:00:00Z" {
		t.Errorf("created changed: %q", got.AccessInformation.Mozilliansorg.Metadata.Created)
	}
	if got.PrimaryEmail == nil || got.FirstName == nil {
		t.Error("partial update should keep attributes it does not carry")
	}
}

func TestUpdateUser_RejectsBadSignature(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Insert(ctx, testutil.Profile("u1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	p := testutil.Profile("u1", "a")
	p.AccessInformation.Mozilliansorg.Signature.Publisher.Value = "not-a-jws"

	if err := s.UpdateUser(ctx, "u1", p); err == nil {
		t.Fatal("expected unsigned attribute to be rejected")
	}
}

func TestUpdateUser_UnknownUser(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	updated, err := groupattr.UpdateGroups(testutil.Profile("ghost"), nil, s.Signer(), time.Now())
	if err != nil {
		t.Fatalf("UpdateGroups: %v", err)
	}
	if err := s.UpdateUser(ctx, "ghost", updated); !errors.Is(err, profilestore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsert_RequiresUserID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := s.Insert(ctx, testutil.Profile("")); err == nil {
		t.Fatal("expected error for profile without user_id")
	}
}
