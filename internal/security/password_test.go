package security

import (
	"strings"
	"testing"
)

var testArgon2Params = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32}

func TestHashAndverifyPassword(t *testing.T) {
	hash, err := NewPasswordHasher(testArgon2Params).Hash("Stronger#Pass123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	ok, err := verifyPassword(hash, "Stronger#Pass123")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected password verification success")
	}
	ok, err = verifyPassword(hash, "wrong-pass")
	if err != nil {
		t.Fatalf("verify wrong password errored: %v", err)
	}
	if ok {
		t.Fatal("expected password verification failure")
	}
}

func TestPasswordHasherSaltsEveryHash(t *testing.T) {
	h := NewPasswordHasher(testArgon2Params)
	a, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := h.Hash("Secret123!")
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct hashes for the same password")
	}
	if strings.Contains(a, "Secret123!") {
		t.Fatal("hash must not contain the plaintext")
	}
	if !strings.HasPrefix(a, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %s", a)
	}
	for _, enc := range []string{a, b} {
		ok, err := h.Verify(enc, "Secret123!")
		if err != nil || !ok {
			t.Fatalf("expected verify ok, got ok=%v err=%v", ok, err)
		}
	}
}

func TestVerifyPasswordRejectsMalformedHash(t *testing.T) {
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$bad$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	}
	for _, enc := range cases {
		if ok, err := verifyPassword(enc, "x"); err == nil || ok {
			t.Fatalf("expected error for %q, got ok=%v err=%v", enc, ok, err)
		}
	}
}
