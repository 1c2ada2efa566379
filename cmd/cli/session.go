package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"daily-logger/internal/client"
)

// sessionFile is the on-disk form of a CLI session.
type sessionFile struct {
	Account *client.Account `json:"account,omitempty"`
	Cookies []storedCookie  `json:"cookies,omitempty"`
}

type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func sessionPath() (string, error) {
	if p := os.Getenv("DAILY_LOGGER_SESSION"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".daily-logger", "session.json"), nil
}

// fileStore is a client.SessionStore persisted between CLI runs.
type fileStore struct {
	path string

	mu      sync.Mutex
	account *client.Account
	cleared bool
}

func newFileStore(path string) *fileStore {
	return &fileStore{path: path}
}

func (s *fileStore) Set(a *client.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account, s.cleared = a, false
}

func (s *fileStore) Get() (*client.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account, s.account != nil
}

func (s *fileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account, s.cleared = nil, true
}

// load restores the account and cookies saved by a previous run. A missing file is not an error.
func (s *fileStore) load(c *client.Client) error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	cookies := make([]*http.Cookie, 0, len(f.Cookies))
	for _, ck := range f.Cookies {
		cookies = append(cookies, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.SetCookies(cookies)
	s.Set(f.Account)
	return nil
}

// save writes the current session, or removes the file once the session was cleared.
func (s *fileStore) save(c *client.Client) error {
	s.mu.Lock()
	account, cleared := s.account, s.cleared
	s.mu.Unlock()
	if cleared {
		err := os.Remove(s.path)
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	f := sessionFile{Account: account}
	for _, ck := range c.Cookies() {
		f.Cookies = append(f.Cookies, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	if f.Account == nil && len(f.Cookies) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
