package secretbox_test

import (
	"encoding/base64"
	"os"
	"strings"
	"testing"

	"github.com/dropDatabas3/prism/internal/security/secretbox"
)

func setTestKey(t *testing.T, seed byte) {
	t.Helper()
	secretbox.UnsafeResetForTests()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = seed + byte(i)
	}
	if err := secretbox.UnsafeSetMasterKeyForTests(raw); err != nil {
		t.Fatalf("set master key: %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	// Sin t.Parallel(): estado global de la clave.
	setTestKey(t, 1)

	msg := "hola mundo ✓ — secreto"
	ct, err := secretbox.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if ct == msg {
		t.Fatal("ciphertext equals plaintext")
	}
	pt, err := secretbox.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if pt != msg {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	setTestKey(t, 100)

	ct, err := secretbox.Encrypt("top secret")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	parts := strings.Split(ct, "|")
	if len(parts) != 2 {
		t.Fatalf("unexpected ct format: %q", ct)
	}
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01 // flip
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	if _, err := secretbox.Decrypt(corrupted); err == nil {
		t.Fatal("expected auth error, got nil")
	}
}

func TestDecrypt_BadFormat(t *testing.T) {
	setTestKey(t, 7)

	for _, ct := range []string{"", "solo-una-parte", "a|b|c", "!!!|AAAA"} {
		if _, err := secretbox.Decrypt(ct); err == nil {
			t.Fatalf("expected error for %q", ct)
		}
	}
}

func TestEnsureLoaded_FromEnv(t *testing.T) {
	secretbox.UnsafeResetForTests()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(255 - i)
	}
	os.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString(raw))
	defer os.Unsetenv("SECRETBOX_MASTER_KEY")
	defer secretbox.UnsafeResetForTests()

	ct, err := secretbox.Encrypt("via env")
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	pt, err := secretbox.Decrypt(ct)
	if err != nil || pt != "via env" {
		t.Fatalf("Decrypt: %q, %v", pt, err)
	}
	if !secretbox.Ready() {
		t.Fatal("Ready() should be true after load")
	}
}

func TestEnsureLoaded_RejectsBadKeys(t *testing.T) {
	// Clave corta.
	secretbox.UnsafeResetForTests()
	os.Setenv("SECRETBOX_MASTER_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	defer os.Unsetenv("SECRETBOX_MASTER_KEY")
	defer secretbox.UnsafeResetForTests()

	if _, err := secretbox.Encrypt("x"); err == nil {
		t.Fatal("expected error for short key")
	}
}
