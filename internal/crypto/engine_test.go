package crypto

import (
	"strings"
	"testing"
)

func TestHashContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		// Digests computed with sha256sum over the exact bytes
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"ascii", "hello world", "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"},
		{"unicode", "héllo wörld", "a1003f7d04a4115711d0b48a2eaf1359ce565d2d2a6fd65098dfcffadeeef59f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HashContent(tt.content)
			if got != tt.want {
				t.Errorf("HashContent(%q) = %s, want %s", tt.content, got, tt.want)
			}
		})
	}
}

func TestHashContent_NoNormalization(t *testing.T) {
	// Whitespace and case are significant
	if HashContent("content") == HashContent("content ") {
		t.Error("trailing whitespace did not change the digest")
	}
	if HashContent("content") == HashContent("Content") {
		t.Error("case did not change the digest")
	}
}

func TestSign_Deterministic(t *testing.T) {
	const (
		contentHash = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
		privateKey  = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
		timestamp   = "2026-08-25T10:30:00.000Z"
	)

	sig1 := Sign(contentHash, privateKey, timestamp)
	sig2 := Sign(contentHash, privateKey, timestamp)
	if sig1 != sig2 {
		t.Error("same inputs produced different signatures")
	}

	if len(sig1) != 64 {
		t.Errorf("signature length = %d, want 64 hex chars", len(sig1))
	}
	if sig1 != strings.ToLower(sig1) {
		t.Error("signature is not lowercase hex")
	}

	// Equals SHA-256("hash:key:timestamp") computed independently
	if want := HashContent(contentHash + ":" + privateKey + ":" + timestamp); sig1 != want {
		t.Errorf("signature = %s, want %s", sig1, want)
	}
}

func TestSign_InputSensitivity(t *testing.T) {
	const (
		contentHash = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
		privateKey  = "deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef"
		timestamp   = "2026-08-25T10:30:00.000Z"
	)
	base := Sign(contentHash, privateKey, timestamp)

	if Sign(contentHash, privateKey, "2026-08-25T10:30:00.001Z") == base {
		t.Error("changing the timestamp by one millisecond did not change the signature")
	}
	if Sign(contentHash, "0000000000000000000000000000000000000000000000000000000000000000", timestamp) == base {
		t.Error("changing the private key did not change the signature")
	}
	if Sign(HashContent("other"), privateKey, timestamp) == base {
		t.Error("changing the content hash did not change the signature")
	}
}

func TestVerificationCode(t *testing.T) {
	sig := Sign(
		HashContent("hello world"),
		"deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef",
		"2026-08-25T10:30:00.000Z",
	)
	hash := HashContent("hello world")

	code := VerificationCode(sig, hash)

	if len(code) != VerificationCodeLength {
		t.Fatalf("code length = %d, want %d", len(code), VerificationCodeLength)
	}
	if code != strings.ToUpper(code) {
		t.Error("code is not uppercase")
	}

	// Every 8th character of sig+hash, uppercased
	combined := sig + hash
	for i := 0; i < VerificationCodeLength; i++ {
		want := strings.ToUpper(string(combined[i*codeStride]))
		if string(code[i]) != want {
			t.Errorf("code[%d] = %c, want %s", i, code[i], want)
		}
	}
}

func TestVerificationCode_Derivable(t *testing.T) {
	// The code is a pure function of signature and hash, so a verifier can
	// recompute it from a decoded certificate without any lookup.
	sig := "abcdef0123456789abcdef0123456789abcdef0123456789abcdef0123456789"
	hash := "9876543210fedcba9876543210fedcba9876543210fedcba9876543210fedcba"

	if VerificationCode(sig, hash) != VerificationCode(sig, hash) {
		t.Error("verification code is not deterministic")
	}

	// Two 64-char hex inputs give 128 chars, indices 0,8,...,56 all land in
	// the signature
	code := VerificationCode(sig, hash)
	if code != "A2A2A2A2" {
		t.Errorf("code = %s, want A2A2A2A2", code)
	}
}

func TestVerificationCode_ShortInputs(t *testing.T) {
	// Fewer than 57 combined chars cannot fill 8 positions; the code is cut
	// to whatever was collected
	code := VerificationCode("abcd", "")
	if code != "A" {
		t.Errorf("code = %q, want %q", code, "A")
	}

	if got := VerificationCode("", ""); got != "" {
		t.Errorf("code for empty inputs = %q, want empty", got)
	}
}
