package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestSHA256Hex_Empty(t *testing.T) {
	// SHA256 of empty string
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	got := SHA256Hex("")
	if got != want {
		t.Errorf("SHA256Hex(\"\") = %s, want %s", got, want)
	}
}

func TestShortHash(t *testing.T) {
	got := ShortHash("user-12345")

	if len(got) != 12 {
		t.Errorf("ShortHash length = %d, want 12", len(got))
	}
	if got != SHA256Hex("user-12345")[:12] {
		t.Errorf("ShortHash = %s, want SHA256 prefix", got)
	}

	// Deterministic
	if got != ShortHash("user-12345") {
		t.Error("ShortHash should be deterministic")
	}

	// Different input should produce different output
	if got == ShortHash("user-67890") {
		t.Error("different inputs should produce different short hashes")
	}
}

func TestShortHash_Empty(t *testing.T) {
	if got := ShortHash(""); got != "" {
		t.Errorf("ShortHash(\"\") = %q, want empty", got)
	}
}
