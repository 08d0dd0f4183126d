package utils

import (
	"strings"
	"testing"
)

func TestGenerateInviteCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateInviteCode()
		if err != nil {
			t.Fatalf("GenerateInviteCode returned %v", err)
		}
		if len(code) != InviteCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), InviteCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(inviteAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		if seen[code] {
			t.Fatalf("code %q repeated", code)
		}
		seen[code] = true
	}
}

func TestGenerateOTP(t *testing.T) {
	otp, err := GenerateOTP()
	if err != nil {
		t.Fatalf("GenerateOTP returned %v", err)
	}
	if len(otp) != OTPLength {
		t.Fatalf("otp %q has length %d, want %d", otp, len(otp), OTPLength)
	}
	for _, r := range otp {
		if r < '0' || r > '9' {
			t.Fatalf("otp %q contains non-digit %q", otp, r)
		}
	}
}

func TestGenerateSecureToken(t *testing.T) {
	a, err := GenerateSecureToken()
	if err != nil {
		t.Fatalf("GenerateSecureToken returned %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("token length = %d, want 64", len(a))
	}
	b, err := GenerateSecureToken()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("two tokens are identical")
	}
}
