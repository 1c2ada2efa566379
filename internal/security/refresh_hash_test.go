package security

import "testing"

func TestHashToken(t *testing.T) {
	h1 := HashToken("token-a")
	if len(h1) != 64 {
		t.Fatalf("HashToken length = %d, want 64", len(h1))
	}
	if h1 != HashToken("token-a") {
		t.Error("HashToken should be deterministic")
	}
	if h1 == HashToken("token-b") {
		t.Error("different tokens should hash differently")
	}
}

func TestTokenHashEqual(t *testing.T) {
	stored := HashToken("refresh-1")
	testCases := []struct {
		name   string
		token  string
		stored string
		want   bool
	}{
		{"match", "refresh-1", stored, true},
		{"superseded", "refresh-0", stored, false},
		{"logged out", "refresh-1", "", false},
		{"raw token stored", "refresh-1", "refresh-1", false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TokenHashEqual(tc.token, tc.stored); got != tc.want {
				t.Errorf("TokenHashEqual = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSecretEqual(t *testing.T) {
	if !SecretEqual("s3cret", "s3cret") {
		t.Error("equal secrets should match")
	}
	if SecretEqual("s3cret", "other") {
		t.Error("different secrets should not match")
	}
	if SecretEqual("", "") {
		t.Error("empty configured secret should never match")
	}
}
