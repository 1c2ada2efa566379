package client

import (
	"strings"
	"sync"
)

// SessionExpiredMessage is shown when renewal fails outside the auth screens.
const SessionExpiredMessage = "Session expired. Please login again."

// SignInPath is where an expired session is sent.
const SignInPath = "/auth/signin"

// SessionStore holds the signed-in account on the client side.
type SessionStore interface {
	Set(a *Account)
	Get() (*Account, bool)
	Clear()
}

// Navigator moves the user between screens and shows transient notices.
type Navigator interface {
	// Path is the current screen, e.g. "/dashboard" or "/auth/signin".
	Path() string
	Navigate(path string)
	Notify(message string)
}

// onAuthScreen reports whether path is one of the sign-in or sign-up screens.
func onAuthScreen(path string) bool {
	return path == "/auth" || strings.HasPrefix(path, "/auth/")
}

// MemoryStore is an in-process SessionStore.
type MemoryStore struct {
	mu      sync.Mutex
	account *Account
}

// Set stores a as the signed-in account.
func (s *MemoryStore) Set(a *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = a
}

// Get returns the signed-in account, if any.
func (s *MemoryStore) Get() (*Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.account != nil
}

// Clear forgets the signed-in account.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = nil
}

// nopNavigator stays on a neutral screen and drops notices.
type nopNavigator struct{}

func (nopNavigator) Path() string     { return "/" }
func (nopNavigator) Navigate(string) {}
func (nopNavigator) Notify(string)   {}
