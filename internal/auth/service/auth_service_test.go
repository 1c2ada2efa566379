package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"daily-logger/internal/security"
	userdomain "daily-logger/internal/user/domain"
)

type memUserRepo struct {
	mu     sync.Mutex
	byID   map[int64]*userdomain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[int64]*userdomain.User{}}
}

func (r *memUserRepo) find(match func(u *userdomain.User) bool) *userdomain.User {
	for _, u := range r.byID {
		if match(u) {
			cp := *u
			return &cp
		}
	}
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id int64) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(u *userdomain.User) bool { return u.ID == id }), nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(u *userdomain.User) bool { return u.Email == email }), nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*userdomain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(func(u *userdomain.User) bool { return u.Username == username }), nil
}

func (r *memUserRepo) Create(ctx context.Context, u *userdomain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUserRepo) SetRefreshTokenHash(ctx context.Context, id int64, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		u.RefreshTokenHash = hash
	}
	return nil
}

func (r *memUserRepo) SwapRefreshTokenHash(ctx context.Context, id int64, oldHash, newHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok || oldHash == "" || u.RefreshTokenHash != oldHash {
		return false, nil
	}
	u.RefreshTokenHash = newHash
	return true, nil
}

func (r *memUserRepo) storedHash(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].RefreshTokenHash
}

type auditEntry struct {
	userID int64
	action string
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *recordingAudit) LogEvent(ctx context.Context, userID int64, action, resource, metadata string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, auditEntry{userID, action})
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo, *recordingAudit) {
	t.Helper()
	repo := newMemUserRepo()
	rec := &recordingAudit{}
	svc := NewAuthService(repo, security.NewHasher(4), security.NewTestHMACTokenProvider(), rec, nil, nil)
	return svc, repo, rec
}

func signedUp(t *testing.T, svc *AuthService) *userdomain.User {
	t.Helper()
	u, err := svc.Signup(context.Background(), "Ada Lovelace", "ada", "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	return u
}

func TestSignup(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	u := signedUp(t, svc)
	if u.ID == 0 || u.Username != "ada" {
		t.Errorf("user = %+v", u)
	}
	if u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Error("password must be stored hashed")
	}

	testCases := []struct {
		name                              string
		fullName, username, email, passwd string
		want                              error
	}{
		{"blank field", "Ada", " ", "x@example.com", "pw", ErrMissingFields},
		{"blank password", "Ada", "x", "x@example.com", "  ", ErrMissingFields},
		{"email taken", "Ada", "other", "ada@example.com", "pw", ErrEmailExists},
		{"username taken", "Ada", "ada", "other@example.com", "pw", ErrUsernameExists},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tc.fullName, tc.username, tc.email, tc.passwd)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Signup err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestSignin(t *testing.T) {
	svc, repo, rec := newTestAuthService(t)
	u := signedUp(t, svc)

	res, err := svc.Signin(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("Signin should return both tokens")
	}
	if !security.TokenHashEqual(res.RefreshToken, repo.storedHash(u.ID)) {
		t.Error("stored hash should match the issued refresh token")
	}
	sub, err := security.NewTestHMACTokenProvider().ValidateAccess(res.AccessToken)
	if err != nil || sub.UserID != u.ID || sub.Username != "ada" {
		t.Errorf("access token subject = %+v, %v", sub, err)
	}

	for _, tc := range []struct{ email, password string }{
		{"ada@example.com", "wrong"},
		{"nobody@example.com", "correct horse"},
	} {
		if _, err := svc.Signin(context.Background(), tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Signin(%q) err = %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
	if _, err := svc.Signin(context.Background(), "", "x"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("Signin empty err = %v, want ErrMissingFields", err)
	}

	failures := 0
	for _, e := range rec.entries {
		if e.action == "signin_failure" {
			failures++
		}
	}
	if failures != 2 {
		t.Errorf("signin_failure audit entries = %d, want 2", failures)
	}
}

func TestRefresh_RotatesAndRejectsSuperseded(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	u := signedUp(t, svc)
	first, err := svc.Signin(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("Refresh should rotate the refresh token")
	}
	if !security.TokenHashEqual(second.RefreshToken, repo.storedHash(u.ID)) {
		t.Error("stored hash should follow the rotated token")
	}

	if _, err := svc.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrRefreshMismatch) {
		t.Fatalf("Refresh with superseded token err = %v, want ErrRefreshMismatch", err)
	}
	if _, err := svc.Refresh(context.Background(), second.RefreshToken); err != nil {
		t.Fatalf("Refresh with live token: %v", err)
	}
}

func TestRefresh_Errors(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	signedUp(t, svc)
	res, err := svc.Signin(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}

	testCases := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrMissingRefresh},
		{"whitespace", "  ", ErrMissingRefresh},
		{"garbage", "abc.def.ghi", ErrRefreshMismatch},
		{"access token", res.AccessToken, ErrRefreshMismatch},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Refresh(context.Background(), tc.token); !errors.Is(err, tc.want) {
				t.Fatalf("Refresh err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestRefresh_ConcurrentSameToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	signedUp(t, svc)
	res, err := svc.Signin(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}

	const n = 6
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Refresh(context.Background(), res.RefreshToken); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Errorf("successful refreshes = %d, want 1", ok)
	}
}

func TestLogout(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)
	u := signedUp(t, svc)
	res, err := svc.Signin(context.Background(), "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Signin: %v", err)
	}

	if err := svc.Logout(context.Background(), res.RefreshToken); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if repo.storedHash(u.ID) != "" {
		t.Error("Logout should clear the stored hash")
	}
	if _, err := svc.Refresh(context.Background(), res.RefreshToken); !errors.Is(err, ErrRefreshMismatch) {
		t.Errorf("Refresh after logout err = %v, want ErrRefreshMismatch", err)
	}
	if err := svc.Logout(context.Background(), res.RefreshToken); !errors.Is(err, ErrRefreshMismatch) {
		t.Errorf("second Logout err = %v, want ErrRefreshMismatch", err)
	}
	if err := svc.Logout(context.Background(), ""); !errors.Is(err, ErrMissingRefresh) {
		t.Errorf("Logout without token err = %v, want ErrMissingRefresh", err)
	}
}
