package security

import (
	"testing"
	"time"
)

var testSubject = Subject{UserID: 42, Username: "nightowl", Email: "owl@example.com"}

func providers(t *testing.T) map[string]*TokenProvider {
	t.Helper()
	rsa, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return map[string]*TokenProvider{"HS256": NewTestHMACTokenProvider(), "RS256": rsa}
}

func TestTokenProvider_IssueAndValidate(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			access, exp, err := p.IssueAccess(testSubject)
			if err != nil {
				t.Fatalf("IssueAccess: %v", err)
			}
			if access == "" || !exp.After(time.Now()) {
				t.Fatalf("IssueAccess: token=%q expiresAt=%v", access, exp)
			}
			got, err := p.ValidateAccess(access)
			if err != nil {
				t.Fatalf("ValidateAccess: %v", err)
			}
			if got != testSubject {
				t.Errorf("ValidateAccess = %+v, want %+v", got, testSubject)
			}

			refresh, refreshExp, err := p.IssueRefresh(testSubject)
			if err != nil {
				t.Fatalf("IssueRefresh: %v", err)
			}
			if !refreshExp.After(exp) {
				t.Errorf("refresh expiry %v should be after access expiry %v", refreshExp, exp)
			}
			got, err = p.ValidateRefresh(refresh)
			if err != nil {
				t.Fatalf("ValidateRefresh: %v", err)
			}
			if got != testSubject {
				t.Errorf("ValidateRefresh = %+v, want %+v", got, testSubject)
			}
		})
	}
}

func TestTokenProvider_KindsAreNotInterchangeable(t *testing.T) {
	for name, p := range providers(t) {
		t.Run(name, func(t *testing.T) {
			access, _, _ := p.IssueAccess(testSubject)
			refresh, _, _ := p.IssueRefresh(testSubject)
			if _, err := p.ValidateRefresh(access); err != ErrInvalidToken {
				t.Errorf("ValidateRefresh(access): want ErrInvalidToken, got %v", err)
			}
			if _, err := p.ValidateAccess(refresh); err != ErrInvalidToken {
				t.Errorf("ValidateAccess(refresh): want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenProvider_RefreshTokensAreDistinct(t *testing.T) {
	p := NewTestHMACTokenProvider()
	a, _, _ := p.IssueRefresh(testSubject)
	b, _, _ := p.IssueRefresh(testSubject)
	if a == b {
		t.Error("two refresh tokens for the same user should differ")
	}
}

func TestTokenProvider_Expired(t *testing.T) {
	p := NewTestHMACTokenProvider()
	past := time.Now().Add(-2 * time.Hour)
	p.SetClock(func() time.Time { return past })
	access, _, err := p.IssueAccess(testSubject)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	p.SetClock(time.Now)
	if _, err := p.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("ValidateAccess expired: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_WrongIssuerOrSecret(t *testing.T) {
	p := NewTestHMACTokenProvider()
	access, _, _ := p.IssueAccess(testSubject)

	other, _ := NewHMACTokenProvider("test-access-secret", "test-refresh-secret", "other-issuer", "test-audience", time.Hour, time.Hour)
	if _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong issuer: want ErrInvalidToken, got %v", err)
	}
	other, _ = NewHMACTokenProvider("test-access-secret", "test-refresh-secret", "test-issuer", "other-audience", time.Hour, time.Hour)
	if _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong audience: want ErrInvalidToken, got %v", err)
	}
	other, _ = NewHMACTokenProvider("another-secret", "test-refresh-secret", "test-issuer", "test-audience", time.Hour, time.Hour)
	if _, err := other.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("wrong secret: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_AlgorithmConfusion(t *testing.T) {
	hmac := NewTestHMACTokenProvider()
	rsa, err := NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	access, _, _ := hmac.IssueAccess(testSubject)
	if _, err := rsa.ValidateAccess(access); err != ErrInvalidToken {
		t.Errorf("HS256 token on RS256 provider: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenProvider_Garbage(t *testing.T) {
	p := NewTestHMACTokenProvider()
	for _, s := range []string{"", "invalid-token", "a.b.c"} {
		if _, err := p.ValidateAccess(s); err != ErrInvalidToken {
			t.Errorf("ValidateAccess(%q): want ErrInvalidToken, got %v", s, err)
		}
	}
}

func TestNewHMACTokenProvider_EmptySecret(t *testing.T) {
	if _, err := NewHMACTokenProvider("", "r", "i", "a", time.Hour, time.Hour); err != ErrWeakSecret {
		t.Errorf("empty access secret: want ErrWeakSecret, got %v", err)
	}
	if _, err := NewHMACTokenProvider("a", "", "i", "a", time.Hour, time.Hour); err != ErrWeakSecret {
		t.Errorf("empty refresh secret: want ErrWeakSecret, got %v", err)
	}
}
