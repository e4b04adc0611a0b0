package password

import (
	"strings"
	"testing"
)

// Parámetros bajos para que el test no queme CPU; el formato es el mismo.
var testParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func TestHashVerify_RoundTrip(t *testing.T) {
	phc, err := Hash(testParams, "correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash err: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %q", phc)
	}
	if !Verify("correct horse battery staple", phc) {
		t.Fatal("Verify rejected the right password")
	}
	if Verify("wrong password", phc) {
		t.Fatal("Verify accepted the wrong password")
	}
}

func TestHash_SaltedPerCall(t *testing.T) {
	a, err := Hash(testParams, "same input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash(testParams, "same input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(testParams, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	malformed := []string{
		"",
		"$argon2id$v=19$m=8192,t=1,p=1$onlyfourparts",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdA$ZGs",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGs", // versión equivocada
		"$argon2id$v=19$m=8192$c2FsdA$ZGs",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$ZGs", // salt no base64
	}
	for _, phc := range malformed {
		if Verify("whatever", phc) {
			t.Fatalf("Verify accepted malformed PHC: %q", phc)
		}
	}
}
