package security

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	encoded, err := HashPassword("Office-Gate-2026!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "argon2id$v=19$") {
		t.Fatalf("unexpected hash format: %s", encoded)
	}

	ok, err := VerifyPassword("Office-Gate-2026!", encoded)
	if err != nil || !ok {
		t.Fatalf("verify correct password: ok=%v err=%v", ok, err)
	}

	ok, err = VerifyPassword("wrong-password", encoded)
	if err != nil {
		t.Fatalf("verify wrong password: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	first, err := HashPassword("Office-Gate-2026!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("Office-Gate-2026!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []string{
		"plain-text",
		"bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		"argon2id$v=19$m=65536,t=3,p=4$not-base64!$aGFzaA",
		"argon2id$v=19$m=65536$c2FsdA$aGFzaA",
	}

	for _, encoded := range cases {
		if ok, err := VerifyPassword("whatever", encoded); err == nil || ok {
			t.Fatalf("malformed hash %q: ok=%v err=%v", encoded, ok, err)
		}
	}

	// Empty inputs are a mismatch, not an error.
	if ok, err := VerifyPassword("", "anything"); err != nil || ok {
		t.Fatalf("empty password: ok=%v err=%v", ok, err)
	}
}

func TestConfigureArgon2Validation(t *testing.T) {
	valid := Argon2Config{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32}
	if err := ConfigureArgon2(valid); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	t.Cleanup(func() { _ = ConfigureArgon2(defaultArgon2Config) })

	invalid := []Argon2Config{
		{Memory: 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 0, Parallelism: 2, SaltLength: 16, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 4, KeyLength: 32},
		{Memory: 16 * 1024, Iterations: 2, Parallelism: 2, SaltLength: 16, KeyLength: 8},
	}
	for i, cfg := range invalid {
		if err := ConfigureArgon2(cfg); err == nil {
			t.Fatalf("config %d accepted: %+v", i, cfg)
		}
	}
}
