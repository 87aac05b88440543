package password

import (
	"strings"
	"testing"
)

// fastArgon2 keeps the memory floor but a single pass so tests stay quick.
func fastArgon2(t *testing.T) *Argon2 {
	t.Helper()

	h, err := NewArgon2(Config{Memory: minMemoryKB, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func TestArgon2DefaultParameters(t *testing.T) {
	h, err := NewArgon2(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	hash, err := h.Hash("kata-sandi-08")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$") {
		t.Fatalf("unexpected PHC prefix: %s", hash)
	}
}

func TestArgon2HashAndVerify(t *testing.T) {
	h := fastArgon2(t)

	first, err := h.Hash("rahasia123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	second, err := h.Hash("rahasia123")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if first == second {
		t.Fatal("expected a fresh salt per hash")
	}

	ok, err := h.Verify("rahasia123", first)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("rahasia124", first)
	if err != nil || ok {
		t.Fatalf("expected mismatch without error, ok=%v err=%v", ok, err)
	}
}

func TestArgon2VerifiesOlderParameters(t *testing.T) {
	old := fastArgon2(t)
	hash, err := old.Hash("1234")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	current, err := NewArgon2(DefaultArgon2Config())
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	ok, err := current.Verify("1234", hash)
	if err != nil || !ok {
		t.Fatalf("expected hash from older parameters to verify, ok=%v err=%v", ok, err)
	}
}

func TestArgon2RejectsMalformedHashes(t *testing.T) {
	h := fastArgon2(t)
	good, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	cases := map[string]string{
		"not phc":       "not-a-phc-hash",
		"bcrypt":        "$2a$10$abcdefghijklmnopqrstuv",
		"wrong version": strings.Replace(good, "$v=19$", "$v=18$", 1),
		"weak memory":   strings.Replace(good, "m=8192", "m=1024", 1),
		"missing key":   good[:strings.LastIndex(good, "$")],
		"extra field":   strings.Replace(good, "$m=8192,t=1,p=1$", "$m=8192,t=1,p=1$!!$", 1),
	}
	for name, hash := range cases {
		if _, err := h.Verify("pw", hash); err == nil {
			t.Fatalf("%s: expected an error", name)
		}
	}
}

func TestArgon2RejectsEmptyPassword(t *testing.T) {
	if _, err := fastArgon2(t).Hash(""); err == nil {
		t.Fatal("expected empty password to be rejected")
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	weak := []Config{
		{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: minMemoryKB, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: minMemoryKB, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: minMemoryKB, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32},
		{Memory: minMemoryKB, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
	}
	for i, cfg := range weak {
		if _, err := NewArgon2(cfg); err == nil {
			t.Fatalf("case %d: expected %+v to be rejected", i, cfg)
		}
	}
}
